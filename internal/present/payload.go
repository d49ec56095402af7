package present

// Kind tells the frontend how to style a payload
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Field is one labelled line of a result
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Image references a preview image to show below the fields
type Image struct {
	Href    string `json:"href"`
	Caption string `json:"caption"`
}

// DisplayPayload is everything the result panel renders for one outcome.
// Fields are ordered; the frontend renders them as given.
type DisplayPayload struct {
	Kind    Kind     `json:"kind"`
	Heading string   `json:"heading,omitempty"`
	Context []string `json:"context,omitempty"`
	Message string   `json:"message"`
	Fields  []Field  `json:"fields,omitempty"`
	Image   *Image   `json:"image,omitempty"`
}

// Field labels in display order
const (
	LabelSceneID     = "Scene ID"
	LabelAcquisition = "Acquisition time"
	LabelCloudCover  = "Cloud cover"
	LabelBoundingBox = "Bounding box"
)
