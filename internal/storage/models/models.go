package models

import "time"

type Category struct {
	ID       string
	Name     string
	Slug     string
	ParentID *string
	Level    int
}

type TagType string

const (
	TagColors     TagType = "colors"
	TagMaterials  TagType = "materials"
	TagActivities TagType = "activities"
	TagStyles     TagType = "styles"
	TagFeatures   TagType = "features"
	TagFit        TagType = "fit"
	TagOccasions  TagType = "occasions"
)

type Tag struct {
	ID   string
	Name string
	Slug string
	Type TagType
}

type ExtractionRecord struct {
	ID              string
	URL             string
	Host            string
	Title           string
	Brand           string
	Price           string
	ImageCount      int
	PrimaryCategory string
	Gender          string
	Confidence      float64
	LatencyMS       int
	CreatedAt       time.Time
}
