// Package catalog implements the document catalog collaborator for Lectern.
// It provides read-only access to the documents, students, subjects, classes,
// and assignments that the teaching platform owns. The catalog is never
// mutated here; context sessions consume a snapshot of it per view.
package catalog

// DocumentType identifies the kind of a catalog document.
type DocumentType string

const (
	// Assignment-level documents uploaded by the teacher.
	TypeStatement       DocumentType = "statement"
	TypeAnswerKey       DocumentType = "answer_key"
	TypeGradingCriteria DocumentType = "grading_criteria"
	TypeSupportMaterial DocumentType = "support_material"

	// Student-level documents uploaded by the teacher.
	TypeSubmission        DocumentType = "submission"
	TypeTeacherCorrection DocumentType = "teacher_correction"

	// Documents generated by the grading pipeline.
	TypeExtractedQuestions DocumentType = "extracted_questions"
	TypeExtractedAnswerKey DocumentType = "extracted_answer_key"
	TypeExtractedAnswers   DocumentType = "extracted_answers"
	TypeCorrection         DocumentType = "correction"
	TypeSkillsAnalysis     DocumentType = "skills_analysis"
	TypeFinalReport        DocumentType = "final_report"
)

// DocumentTypes lists every known document type in display order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		TypeStatement,
		TypeAnswerKey,
		TypeGradingCriteria,
		TypeSupportMaterial,
		TypeSubmission,
		TypeTeacherCorrection,
		TypeExtractedQuestions,
		TypeExtractedAnswerKey,
		TypeExtractedAnswers,
		TypeCorrection,
		TypeSkillsAnalysis,
		TypeFinalReport,
	}
}

// Document is a catalog document record. Identifiers are opaque strings
// assigned by the catalog service and stable for the life of a session.
type Document struct {
	ID           string       `json:"id"`
	Type         DocumentType `json:"type"`
	SubjectID    *string      `json:"subject_id,omitempty"`
	ClassID      *string      `json:"class_id,omitempty"`
	AssignmentID *string      `json:"assignment_id,omitempty"`
	StudentID    *string      `json:"student_id,omitempty"`
	Filename     string       `json:"filename"`
	Extension    string       `json:"extension"`
	SizeBytes    int64        `json:"size_bytes"`
}

// IsBase reports whether the document is student-independent. Base documents
// always match student-facet filtering regardless of which students are selected.
func (d Document) IsBase() bool {
	return d.StudentID == nil
}

// dataFileExtensions marks raw structured-data exports produced by the
// grading pipeline (extraction payloads, tabular grade dumps).
var dataFileExtensions = map[string]bool{
	".json": true,
	".csv":  true,
}

// IsDataFile reports whether the document is a raw structured-data export,
// subject to the hide-data-files flag in every selection mode.
func (d Document) IsDataFile() bool {
	return dataFileExtensions[d.Extension]
}

// FacetValue is a selectable value within a filter facet: a student, subject,
// class, or assignment known to the catalog.
type FacetValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the catalog state a context session consumes: the full document
// list plus the independent facet domains. Dependent facet domains (classes,
// assignments) are fetched on demand as parent selections change.
type Snapshot struct {
	Documents []Document   `json:"documents"`
	Students  []FacetValue `json:"students"`
	Subjects  []FacetValue `json:"subjects"`
}
