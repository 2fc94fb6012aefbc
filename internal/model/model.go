package model

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusNeedsEdit  Status = "Needs Edit"
	StatusEdited     Status = "Edited"
	StatusPublished  Status = "Published"
)

type StatusColor string

const (
	ColorWhite  StatusColor = "white"
	ColorRed    StatusColor = "red"
	ColorYellow StatusColor = "yellow"
)

// NextColor cycles white -> red -> yellow -> white.
func NextColor(c StatusColor) StatusColor {
	switch c {
	case ColorRed:
		return ColorYellow
	case ColorYellow:
		return ColorWhite
	default:
		return ColorRed
	}
}

type Category string

const (
	CategoryFeature Category = "F"
	CategoryNews    Category = "N"
	CategoryOpinion Category = "O"
	CategorySports  Category = "S"
)

var Categories = []Category{CategoryFeature, CategoryNews, CategoryOpinion, CategorySports}

// Editor is the assigned copy editor. Empty means unassigned.
type Editor string

const (
	EditorNone   Editor = ""
	EditorCopley Editor = "Copley"
	EditorLewis  Editor = "Lewis"
)

var Editors = []Editor{EditorNone, EditorCopley, EditorLewis}

type Article struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Cat         Category    `json:"cat"`
	Editor      Editor      `json:"editor"`
	Deadline    string      `json:"deadline,omitempty"` // YYYY-MM-DD, optional
	Status      Status      `json:"status"`
	StatusColor StatusColor `json:"status_color"`
	FileCount   int         `json:"file_count"`
	Archived    bool        `json:"archived,omitempty"`
}

// StatusHistoryEntry is one row of an article's append-only status log.
// Timestamp stays a string on this side of the wire: the server emits UTC
// instants without a zone suffix, and display code normalizes before parsing.
// Insertion order, not timestamp order, defines which entry is current.
type StatusHistoryEntry struct {
	ArticleID int64  `json:"article_id,omitempty"`
	Status    Status `json:"status"`
	Timestamp string `json:"timestamp"`
	UserName  string `json:"user_name"`
}

type FileAttachment struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	Filename  string `json:"filename"`
}
