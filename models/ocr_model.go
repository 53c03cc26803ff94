package models

import "time"

// OcrPage holds the OCR output for one page of one file. A page row is
// written atomically together with its words after the page's OCR call
// succeeds; it is never partially updated afterwards.
type OcrPage struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	UploadedFileID uint   `gorm:"not null;uniqueIndex:idx_file_page,priority:1" json:"file_id"`
	PageNumber     int    `gorm:"not null;uniqueIndex:idx_file_page,priority:2" json:"page_number"`
	FullText       string `gorm:"type:text" json:"full_text"`

	Words []OcrWord `gorm:"foreignKey:OcrPageID;constraint:OnDelete:CASCADE" json:"words"`

	CreatedAt time.Time `json:"created_at"`
}

func (OcrPage) TableName() string {
	return "ocr_pages"
}

// OcrWord is one recognized token with its bounding quad. The four corner
// points run clockwise from the top-left: (X1,Y1) top-left, (X2,Y2)
// top-right, (X3,Y3) bottom-right, (X4,Y4) bottom-left.
type OcrWord struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	OcrPageID  uint    `gorm:"not null;index:idx_word_page" json:"-"`
	Text       string  `gorm:"type:text;not null" json:"text"`
	Confidence float64 `gorm:"not null" json:"confidence"` // 0.0 ~ 1.0

	X1 int `gorm:"not null" json:"x1"`
	Y1 int `gorm:"not null" json:"y1"`
	X2 int `gorm:"not null" json:"x2"`
	Y2 int `gorm:"not null" json:"y2"`
	X3 int `gorm:"not null" json:"x3"`
	Y3 int `gorm:"not null" json:"y3"`
	X4 int `gorm:"not null" json:"x4"`
	Y4 int `gorm:"not null" json:"y4"`

	WordOrder int `gorm:"not null" json:"word_order"` // 0-based, contiguous within the page
}

func (OcrWord) TableName() string {
	return "ocr_words"
}

// Height is the pixel height of the bounding quad (bottom minus top).
func (w *OcrWord) Height() int {
	return w.Y3 - w.Y1
}

// PageOcrResult is the parsed output of one OCR engine call, before it is
// persisted as an OcrPage. Word order indices are assigned at save time.
type PageOcrResult struct {
	PageNumber int
	FullText   string
	Words      []WordInfo
}

type WordInfo struct {
	Text       string
	Confidence float64
	X1, Y1     int
	X2, Y2     int
	X3, Y3     int
	X4, Y4     int
}
