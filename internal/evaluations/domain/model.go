package domain

import "errors"

var (
	ErrNotFound         = errors.New("question not found")
	ErrInvalidQuestion  = errors.New("question text is required")
	ErrUnknownReplyType = errors.New("unknown reply type")
	ErrInvalidWeight    = errors.New("invalid weight for reply type")
)

// QuestionLink is one question of an evaluation together with its position.
// ID is the question id; LinkID identifies the evaluations_questions_model row.
type QuestionLink struct {
	ID               int64   `json:"id"`
	LinkID           int64   `json:"evaluation_question_id"`
	Question         string  `json:"question"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	Subcategory      *string `json:"subcategory"`
	CategoryID       int64   `json:"category_id"`
	SubcategoryID    *int64  `json:"subcategory_id"`
	Weight           int     `json:"weight"`
	Required         bool    `json:"required"`
	ReplyTypeID      *int64  `json:"reply_type_id"`
	CategoryOrder    int     `json:"category_order"`
	SubcategoryOrder int     `json:"subcategory_order"`
	QuestionOrder    int     `json:"question_order"`
}

// SameContainer reports whether both questions share category and
// subcategory.
func (q QuestionLink) SameContainer(o QuestionLink) bool {
	return q.CategoryID == o.CategoryID && sameID(q.SubcategoryID, o.SubcategoryID)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// OrderUpdate rewrites the order columns of one link row. Nil fields are
// left unchanged.
type OrderUpdate struct {
	LinkID           int64 `json:"evaluation_question_id"`
	CategoryOrder    *int  `json:"category_order,omitempty"`
	SubcategoryOrder *int  `json:"subcategory_order,omitempty"`
	QuestionOrder    *int  `json:"question_order,omitempty"`
}

// QuestionMove reassigns a question to another category/subcategory. A nil
// Category keeps the stored label.
type QuestionMove struct {
	QuestionID    int64   `json:"question_id"`
	CategoryID    int64   `json:"category_id"`
	SubcategoryID *int64  `json:"subcategory_id"`
	Category      *string `json:"category"`
	Subcategory   *string `json:"subcategory"`
}

// Plan is the set of row writes produced by a reorder. It is applied
// atomically.
type Plan struct {
	Updates []OrderUpdate  `json:"updates"`
	Moves   []QuestionMove `json:"moves"`
}

func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Moves) == 0
}

// NewQuestion is the payload for adding a question to an evaluation.
type NewQuestion struct {
	Question      string `json:"question"`
	Description   string `json:"description"`
	CategoryID    int64  `json:"category_id" binding:"required,gt=0"`
	SubcategoryID *int64 `json:"subcategory_id"`
	ReplyTypeID   int64  `json:"reply_type_id" binding:"required,gt=0"`
	Weight        int    `json:"weight" binding:"gte=0"`
	Required      bool   `json:"required"`
}

// Orders positions a question inside an evaluation.
type Orders struct {
	Category    int
	Subcategory int
	Question    int
}

// QuestionPatch edits a question's content. Nil fields are left unchanged.
type QuestionPatch struct {
	Question    *string `json:"question"`
	Description *string `json:"description"`
	ReplyTypeID *int64  `json:"reply_type_id"`
	Weight      *int    `json:"weight" binding:"omitempty,gte=0"`
	Required    *bool   `json:"required"`
}

// ManualReorderItem is one row of the bulk reorder payload.
type ManualReorderItem struct {
	LinkID           int64   `json:"evaluation_question_id"`
	QuestionID       int64   `json:"question_id"`
	CategoryOrder    *int    `json:"category_order"`
	SubcategoryOrder *int    `json:"subcategory_order"`
	QuestionOrder    *int    `json:"question_order"`
	CategoryID       *int64  `json:"category_id"`
	SubcategoryID    *int64  `json:"subcategory_id"`
	Category         *string `json:"category"`
	Subcategory      *string `json:"subcategory"`
}

// QuestionLabels are the denormalised category and subcategory values
// stored on a question.
type QuestionLabels struct {
	Category    string
	Subcategory string
}
