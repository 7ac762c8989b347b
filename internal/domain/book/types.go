package book

// ConditionGrade is the five-value grading scale assigned at intake.
type ConditionGrade string

const (
	ConditionBrandNew   ConditionGrade = "brand_new"
	ConditionLikeNew    ConditionGrade = "like_new"
	ConditionVeryGood   ConditionGrade = "very_good"
	ConditionGood       ConditionGrade = "good"
	ConditionAcceptable ConditionGrade = "acceptable"
)

func (c ConditionGrade) String() string {
	return string(c)
}

func (c ConditionGrade) IsValid() bool {
	switch c {
	case ConditionBrandNew, ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionAcceptable:
		return true
	default:
		return false
	}
}

// PublishStatus tracks the durable outcome of the last publish cycle.
// The zero value means the book has never entered a publish cycle.
type PublishStatus string

const (
	PublishStatusNone      PublishStatus = ""
	PublishStatusDraft     PublishStatus = "draft"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusFailed    PublishStatus = "failed"
)

func (s PublishStatus) String() string {
	return string(s)
}

func (s PublishStatus) IsValid() bool {
	switch s {
	case PublishStatusNone, PublishStatusDraft, PublishStatusPublished, PublishStatusFailed:
		return true
	default:
		return false
	}
}
