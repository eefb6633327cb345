package types

// QueryStatus is the review state of a query. The legacy values
// pending/finished are rewritten to these by the schema migration and never
// appear at the core boundary.
type QueryStatus string

const (
	QueryStatusUnverified QueryStatus = "unverified"
	QueryStatusVerified   QueryStatus = "verified"
)

func (s QueryStatus) Valid() bool {
	return s == QueryStatusUnverified || s == QueryStatusVerified
}

// AnnotationFlag marks whether an annotation has been filled in.
type AnnotationFlag string

const (
	AnnotationFlagAnnotated   AnnotationFlag = "annotated"
	AnnotationFlagUnannotated AnnotationFlag = "unannotated"
)

func (f AnnotationFlag) Valid() bool {
	return f == AnnotationFlagAnnotated || f == AnnotationFlagUnannotated
}

// AnnotationType categorizes what kind of labeling an annotation carries.
type AnnotationType string

const (
	AnnotationTypeGrounding AnnotationType = "grounding"
	AnnotationTypeCounting  AnnotationType = "counting"
	AnnotationTypeBoth      AnnotationType = "both"
)

func (t AnnotationType) Valid() bool {
	return t == AnnotationTypeGrounding || t == AnnotationTypeCounting || t == AnnotationTypeBoth
}
