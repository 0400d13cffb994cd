package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/abhilashdr/jobscout/internal/job"
)

const digestTopJobs = 5

// Digest carries everything a digest email reports about a run.
type Digest struct {
	Date         time.Time
	NewJobs      int
	HighPriority int
	Pending      int
	TopJobs      []job.Posting
}

var digestHTMLTmpl = template.Must(template.New("digest").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; }
.header { background: #007bff; color: white; padding: 20px; }
.job-card { border: 1px solid #ddd; padding: 15px; margin: 10px 0; border-radius: 5px; border-left: 5px solid #28a745; }
.score { font-size: 24px; font-weight: bold; color: #28a745; }
.button { background: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block; }
</style>
</head>
<body>
<div class="header">
<h1>Your Daily Job Intelligence Report</h1>
<p>{{.Date.Format "Monday, January 2, 2006"}}</p>
</div>
<div style="padding: 20px;">
<h2>Summary</h2>
<ul>
<li>New Jobs Found: <strong>{{.NewJobs}}</strong></li>
<li>High Match: <strong>{{.HighPriority}}</strong></li>
<li>Pending Applications: <strong>{{.Pending}}</strong></li>
</ul>
<h2>Top Matches</h2>
{{range .TopJobs}}<div class="job-card">
<h3>{{.Title}}</h3>
<p><strong>{{.Company}}</strong> | {{.Location}}</p>
<p class="score">{{.RelevanceScore}}% Match</p>
<p><strong>Skills:</strong> {{.SkillsRequired}}</p>
<p><strong>Experience:</strong> {{.ExperienceRequired}}</p>
<a href="{{.ApplicationLink}}" class="button">Apply Now</a>
</div>
{{end}}</div>
</body>
</html>`))

var alertHTMLTmpl = template.Must(template.New("alert").Parse(`<html>
<body>
<h2>High Priority Job Match!</h2>
<h3>{{.Title}}</h3>
<p><strong>Company:</strong> {{.Company}}</p>
<p><strong>Location:</strong> {{.Location}}</p>
<p><strong>Match Score:</strong> {{.RelevanceScore}}%</p>
<p><strong>Experience:</strong> {{.ExperienceRequired}}</p>
<p><strong>Skills:</strong> {{.SkillsRequired}}</p>
<br>
<a href="{{.ApplicationLink}}" style="background:#007bff;color:white;padding:10px 20px;text-decoration:none;border-radius:5px;">Apply Now</a>
<br><br>
<p><em>This job matches {{.RelevanceScore}}% of your profile. Apply within 24 hours!</em></p>
</body>
</html>`))

func (d Digest) topJobs() []job.Posting {
	if len(d.TopJobs) > digestTopJobs {
		return d.TopJobs[:digestTopJobs]
	}
	return d.TopJobs
}

func renderDigestHTML(d Digest) (string, error) {
	view := d
	view.TopJobs = d.topJobs()

	var b strings.Builder
	if err := digestHTMLTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return b.String(), nil
}

func renderDigestText(d Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "YOUR DAILY JOB INTELLIGENCE REPORT\n%s\n\n", d.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "SUMMARY\n")
	fmt.Fprintf(&b, "New Jobs Found: %d\n", d.NewJobs)
	fmt.Fprintf(&b, "High Match: %d\n", d.HighPriority)
	fmt.Fprintf(&b, "Pending Applications: %d\n\n", d.Pending)
	fmt.Fprintf(&b, "TOP MATCHES\n")

	for i, p := range d.topJobs() {
		fmt.Fprintf(&b, "%d. %s\n   Company: %s\n   Location: %s\n   Match: %.2f%%\n   Apply: %s\n\n",
			i+1, p.Title, p.Company, p.Location, p.RelevanceScore, p.ApplicationLink)
	}

	return b.String()
}

func renderAlertHTML(p job.Posting) (string, error) {
	var b strings.Builder
	if err := alertHTMLTmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("rendering alert: %w", err)
	}
	return b.String(), nil
}
