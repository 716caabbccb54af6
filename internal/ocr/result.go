package ocr

// Status classifies the outcome of one extraction call.
type Status int

const (
	StatusSuccess Status = iota
	StatusNotFound
	StatusCallFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusCallFailed:
		return "call_failed"
	}
	return "unknown"
}

// NotFoundText stands in for the text of an image that is missing on disk.
const NotFoundText = "N/A (Image file not found)"

// Result is what an Engine returns for one image.
type Result struct {
	Status Status
	Text   string
	Reason string
}

func Success(text string) Result      { return Result{Status: StatusSuccess, Text: text} }
func NotFound() Result                { return Result{Status: StatusNotFound} }
func CallFailed(reason string) Result { return Result{Status: StatusCallFailed, Reason: reason} }
func (r Result) OK() bool             { return r.Status == StatusSuccess }

// String renders the result the way it appears in the console report and
// the output document.
func (r Result) String() string {
	switch r.Status {
	case StatusNotFound:
		return NotFoundText
	case StatusCallFailed:
		return "API call failed: " + r.Reason
	}
	return r.Text
}
