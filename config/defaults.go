package config

const (
	DefaultIntervalMS       = 3000
	DefaultRequestTimeoutMS = 10000
	DefaultReportFilename   = "emotion_report.pdf"
	DefaultReportTitle      = "Emotion Analysis Report"
)

// Defaults mirrors the local development setup: classifier and archive on the
// same Flask host, frames read from ./frames.
func Defaults() *Root {
	r := &Root{}
	r.Session.IntervalMS = DefaultIntervalMS
	r.Session.RequestTimeoutMS = DefaultRequestTimeoutMS
	r.Services.Classifier.URL = "http://127.0.0.1:5000"
	r.Services.Archive.URL = "http://127.0.0.1:5000"
	r.Frames.Source = "dir"
	r.Frames.Dir = "frames"
	r.Frames.MIME = "image/jpeg"
	r.Report.OutputDir = "outputs"
	r.Report.Filename = DefaultReportFilename
	r.Report.Title = DefaultReportTitle
	r.Server.Addr = "127.0.0.1:8088"
	r.Log.Level = "info"
	return r
}

// applyDefaults fills zero values a partial YAML document may have cleared.
func (r *Root) applyDefaults() {
	d := Defaults()
	if r.Session.IntervalMS == 0 {
		r.Session.IntervalMS = d.Session.IntervalMS
	}
	if r.Session.RequestTimeoutMS == 0 {
		r.Session.RequestTimeoutMS = d.Session.RequestTimeoutMS
	}
	if r.Frames.Source == "" {
		r.Frames.Source = d.Frames.Source
	}
	if r.Frames.MIME == "" {
		r.Frames.MIME = d.Frames.MIME
	}
	if r.Report.OutputDir == "" {
		r.Report.OutputDir = d.Report.OutputDir
	}
	if r.Report.Filename == "" {
		r.Report.Filename = d.Report.Filename
	}
	if r.Report.Title == "" {
		r.Report.Title = d.Report.Title
	}
	if r.Server.Addr == "" {
		r.Server.Addr = d.Server.Addr
	}
	if r.Log.Level == "" {
		r.Log.Level = d.Log.Level
	}
}
