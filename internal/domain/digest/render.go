package digest

import (
	"bytes"
	"fmt"
	"html/template"
)

var digestTmpl = template.Must(template.New("digest_email").Parse(`<html>
<body>
<h2>{{.Title}}</h2>
<p>Reporting period: {{.Week}}</p>
{{range .Groups}}
<h3>{{.Name}}</h3>
<table>
<tr><td>Total cases</td><td>{{.Stats.Total}}</td></tr>
<tr><td>Females</td><td>{{.Stats.Females}}</td></tr>
<tr><td>Males</td><td>{{.Stats.Males}}</td></tr>
<tr><td>Under 5</td><td>{{.Stats.Under5}}</td></tr>
<tr><td>5 and over</td><td>{{.Stats.FiveAndOver}}</td></tr>
{{range $country, $count := .Stats.Travel}}<tr><td>Travelled to {{$country}}</td><td>{{$count}}</td></tr>
{{end}}<tr><td>Travelled elsewhere</td><td>{{.Stats.OtherTravel}}</td></tr>
<tr><td>No international travel</td><td>{{.Stats.NoTravel}}</td></tr>
</table>
{{end}}
<h3>Totals</h3>
<table>
<tr><td>Total cases</td><td>{{.Totals.Total}}</td></tr>
<tr><td>Females</td><td>{{.Totals.Females}}</td></tr>
<tr><td>Males</td><td>{{.Totals.Males}}</td></tr>
<tr><td>Under 5</td><td>{{.Totals.Under5}}</td></tr>
<tr><td>5 and over</td><td>{{.Totals.FiveAndOver}}</td></tr>
</table>
</body>
</html>
`))

func renderDigestHTML(data *Data) (string, error) {
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest email: %w", err)
	}
	return buf.String(), nil
}

func renderDigestText(data *Data) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\nReporting period: %s\n\n", data.Title, data.Week)
	for _, g := range data.Groups {
		fmt.Fprintf(&buf, "%s: %d cases (%d female, %d male, %d under 5)\n",
			g.Name, g.Stats.Total, g.Stats.Females, g.Stats.Males, g.Stats.Under5)
	}
	fmt.Fprintf(&buf, "\nTotal: %d cases (%d female, %d male)\n",
		data.Totals.Total, data.Totals.Females, data.Totals.Males)
	return buf.String()
}
