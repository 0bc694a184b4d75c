package mailing

import (
	"Go-Shopping-Sync/domain"
	"bytes"
	"html/template"
)

var tripSummaryTemplate = template.Must(template.New("trip").Parse(`<h2>Shopping trip finished at {{.StoreName}}</h2>
<p>{{.FinishedBy}} finished the trip on {{.FinishedAt.Format "2006-01-02 15:04"}}.</p>
<h3>Purchased</h3>
<ul>{{range .Purchased}}<li>{{.Name}} ({{.Quantity}} {{.Unit}})</li>{{end}}</ul>
{{if .Remaining}}<h3>Still on the list</h3>
<ul>{{range .Remaining}}<li>{{.Name}} ({{.Quantity}} {{.Unit}})</li>{{end}}</ul>{{end}}`))

func TripSummarySubject(receipt domain.TripReceipt) string {
	return "Shopping trip finished: " + receipt.StoreName
}

func TripSummaryBody(receipt domain.TripReceipt) (string, error) {
	var buf bytes.Buffer
	if err := tripSummaryTemplate.Execute(&buf, receipt); err != nil {
		return "", err
	}
	return buf.String(), nil
}
