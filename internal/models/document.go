package models

// Document is an uploaded CV held in memory for the length of one submission.
type Document struct {
	Filename string
	Content  []byte
}

func (d Document) Size() int {
	return len(d.Content)
}
