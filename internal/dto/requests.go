package dto

import "time"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	IssuedAt    time.Time `json:"issuedAt"`
	User        UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	SchoolID string `json:"schoolId"`
}

// ListQuery is the shared paging and search query.
type ListQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

// IDParam carries a single path identifier.
type IDParam struct {
	ID string `json:"id"`
}

// CreateSubjectRequest creates a subject.
type CreateSubjectRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateSubjectBody holds optional subject changes.
type UpdateSubjectBody struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateSubjectRequest is the {query, body} envelope for subject updates.
type UpdateSubjectRequest struct {
	Query IDParam           `json:"query"`
	Body  UpdateSubjectBody `json:"body"`
}

// CreateSkillRequest creates a skill.
type CreateSkillRequest struct {
	Name        string  `json:"name"`
	SubjectID   *string `json:"subjectId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateSkillBody holds optional skill changes.
type UpdateSkillBody struct {
	Name        *string `json:"name,omitempty"`
	SubjectID   *string `json:"subjectId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateSkillRequest is the {query, body} envelope for skill updates.
type UpdateSkillRequest struct {
	Query IDParam         `json:"query"`
	Body  UpdateSkillBody `json:"body"`
}

// CreateCareerRequest creates a career.
type CreateCareerRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	InfoURL     *string  `json:"infoUrl,omitempty"`
	SkillIDs    []string `json:"skillIds,omitempty"`
}

// UpdateCareerBody holds optional career changes.
type UpdateCareerBody struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	InfoURL     *string  `json:"infoUrl,omitempty"`
	SkillIDs    []string `json:"skillIds,omitempty"`
}

// UpdateCareerRequest is the {query, body} envelope for career updates.
type UpdateCareerRequest struct {
	Query IDParam          `json:"query"`
	Body  UpdateCareerBody `json:"body"`
}

// SchoolParam identifies the school in member routes.
type SchoolParam struct {
	SchoolID string `json:"schoolId"`
}

// AddMemberBody names the user and role joining a school.
type AddMemberBody struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// AddMemberRequest is the {query, body} envelope for adding members.
type AddMemberRequest struct {
	Query SchoolParam   `json:"query"`
	Body  AddMemberBody `json:"body"`
}

// ListMembersQuery filters school members.
type ListMembersQuery struct {
	SchoolID string `json:"schoolId"`
	Role     string `json:"role"`
}

// RemoveMemberParams identifies a membership.
type RemoveMemberParams struct {
	SchoolID string `json:"schoolId"`
	MemberID string `json:"memberId"`
}

// CreateAssignmentRequest creates an assignment.
type CreateAssignmentRequest struct {
	SubjectID   string    `json:"subjectId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate"`
	MaxScore    float64   `json:"maxScore"`
	Options     []string  `json:"options,omitempty"`
}

// UpdateAssignmentBody holds optional assignment changes.
type UpdateAssignmentBody struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	MaxScore    *float64   `json:"maxScore,omitempty"`
}

// UpdateAssignmentRequest is the {query, body} envelope for assignment updates.
type UpdateAssignmentRequest struct {
	Query IDParam              `json:"query"`
	Body  UpdateAssignmentBody `json:"body"`
}

// ListAssignmentsQuery filters assignments.
type ListAssignmentsQuery struct {
	SubjectID string `json:"subjectId"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// SubmitAssignmentBody carries a student's answer.
type SubmitAssignmentBody struct {
	Content string `json:"content"`
}

// SubmitAssignmentRequest is the {query, body} envelope for submissions.
type SubmitAssignmentRequest struct {
	Query IDParam              `json:"query"`
	Body  SubmitAssignmentBody `json:"body"`
}

// SubmissionParams identifies a submission under an assignment.
type SubmissionParams struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submissionId"`
}

// GradeSubmissionBody carries the score for a student's submission.
type GradeSubmissionBody struct {
	StudentID string  `json:"studentId"`
	Score     float64 `json:"score"`
	Feedback  *string `json:"feedback,omitempty"`
}

// GradeSubmissionRequest is the {query, body} envelope for grading.
type GradeSubmissionRequest struct {
	Query IDParam             `json:"query"`
	Body  GradeSubmissionBody `json:"body"`
}

// AttendanceRecordInput is one student's status in an attendance payload.
type AttendanceRecordInput struct {
	StudentID string  `json:"studentId"`
	Status    string  `json:"status"`
	Note      *string `json:"note,omitempty"`
}

// CreateAttendanceRequest opens a roll call with its records.
type CreateAttendanceRequest struct {
	SubjectID string                  `json:"subjectId"`
	Date      time.Time               `json:"date"`
	Records   []AttendanceRecordInput `json:"records"`
}

// AttendanceRowParam identifies an attendance row.
type AttendanceRowParam struct {
	AttendanceRowID string `json:"attendanceRowId"`
}

// UpdateAttendanceRecordRequest is the {query, body} envelope for record updates.
type UpdateAttendanceRecordRequest struct {
	Query AttendanceRowParam    `json:"query"`
	Body  AttendanceRecordInput `json:"body"`
}

// ExportAttendanceQuery selects the row and output format.
type ExportAttendanceQuery struct {
	AttendanceRowID string `json:"attendanceRowId"`
	Format          string `json:"format"`
}

// ListNotificationsQuery filters the caller's inbox.
type ListNotificationsQuery struct {
	UnreadOnly bool `json:"unreadOnly"`
}

// SubmissionAttachmentResponse returns a signed download link for an upload.
type SubmissionAttachmentResponse struct {
	SubmissionID string    `json:"submissionId"`
	DownloadURL  string    `json:"downloadUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// FileTokenParam carries a signed download token.
type FileTokenParam struct {
	Token string `json:"token"`
}
