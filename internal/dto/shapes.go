package dto

import (
	"github.com/noah-isme/sma-classroom-api/internal/models"
	v "github.com/noah-isme/sma-classroom-api/pkg/validation"
)

// Request shapes, declared once at startup. Path parameters and query string
// values are merged into the "query" part of envelopes; JSON bodies go to "body".
var (
	LoginShape = v.Shape("login",
		v.Email("email").Require().With(v.Trim),
		v.String("password").Require(),
	)

	ListQueryShape = v.Shape("listQuery",
		v.Number("page").With(v.ToNumber).Int().Min(1),
		v.Number("limit").With(v.ToNumber).Int().Min(1).Max(100),
		v.String("search").With(v.Trim).MaxLen(100),
	)

	IDParamShape = v.Shape("idParam", v.ID("id").Require())

	createSubjectBody = v.Shape("createSubject",
		v.String("name").Require().With(v.Trim).MaxLen(80),
		v.String("code").Require().With(v.Trim).MaxLen(12).Match(`^[A-Za-z0-9-]+$`),
		v.HexColor("color"),
		v.String("description").MaxLen(500),
	)
	CreateSubjectShape = createSubjectBody
	UpdateSubjectShape = v.Envelope("updateSubject", IDParamShape, createSubjectBody.Partial("updateSubjectBody"))

	createSkillBody = v.Shape("createSkill",
		v.String("name").Require().With(v.Trim).MaxLen(80),
		v.ID("subjectId"),
		v.String("description").MaxLen(500),
	)
	CreateSkillShape = createSkillBody
	UpdateSkillShape = v.Envelope("updateSkill", IDParamShape, createSkillBody.Partial("updateSkillBody"))

	createCareerBody = v.Shape("createCareer",
		v.String("name").Require().With(v.Trim).MaxLen(120),
		v.String("description").MaxLen(2000),
		v.URL("infoUrl"),
		v.ID("skillIds").EachOf(),
	)
	CreateCareerShape = createCareerBody
	UpdateCareerShape = v.Envelope("updateCareer", IDParamShape, createCareerBody.Partial("updateCareerBody"))

	schoolParamShape = v.Shape("schoolParam", v.ID("schoolId").Require())
	AddMemberShape   = v.Envelope("addMember", schoolParamShape, v.Shape("addMemberBody",
		v.ID("userId").Require(),
		v.Enum("role", models.Roles()...).Require(),
	))
	ListMembersShape  = v.Shape("listMembers", v.ID("schoolId").Require(), v.Enum("role", models.Roles()...))
	RemoveMemberShape = v.Shape("removeMember", v.ID("schoolId").Require(), v.ID("memberId").Require())

	createAssignmentBody = v.Shape("createAssignment",
		v.ID("subjectId").Require(),
		v.String("title").Require().With(v.Trim).MaxLen(120),
		v.String("description").MaxLen(2000),
		v.Date("dueDate").Require().With(v.ToDate),
		v.Number("maxScore").Require().With(v.ToNumber).Min(0).Max(1000),
		v.String("options").EachOf().MaxLen(200),
	)
	CreateAssignmentShape = createAssignmentBody
	UpdateAssignmentShape = v.Envelope("updateAssignment", IDParamShape, v.Shape("updateAssignmentBody",
		v.String("title").With(v.Trim).NotEmpty().MaxLen(120),
		v.String("description").MaxLen(2000),
		v.Date("dueDate").With(v.ToDate),
		v.Number("maxScore").With(v.ToNumber).Min(0).Max(1000),
	))
	ListAssignmentsShape = v.Shape("listAssignments",
		v.ID("subjectId"),
		v.Number("page").With(v.ToNumber).Int().Min(1),
		v.Number("limit").With(v.ToNumber).Int().Min(1).Max(100),
	)
	SubmitAssignmentShape = v.Envelope("submitAssignment", IDParamShape, v.Shape("submitAssignmentBody",
		v.String("content").Require().MaxLen(10000),
	))
	SubmissionParamShape = v.Shape("submissionParam",
		v.ID("id").Require(),
		v.ID("submissionId").Require(),
	)
	GradeSubmissionShape = v.Envelope("gradeSubmission", IDParamShape, v.Shape("gradeSubmissionBody",
		v.ID("studentId").Require(),
		v.Number("score").Require().With(v.ToNumber).Min(0),
		v.String("feedback").MaxLen(1000),
	))

	attendanceRecordShape = v.Shape("attendanceRecord",
		v.ID("studentId").Require(),
		v.Enum("status", models.AttendanceStatuses()...).Require(),
		v.String("note").MaxLen(255),
	)
	CreateAttendanceShape = v.Shape("createAttendance",
		v.ID("subjectId").Require(),
		v.Date("date").Require().With(v.ToDate),
		v.Object("records", attendanceRecordShape).EachOf().Require().MinItems(1),
	)
	UpdateAttendanceRecordShape = v.Envelope("updateAttendanceRecord",
		v.Shape("attendanceRowParam", v.ID("attendanceRowId").Require()),
		attendanceRecordShape,
	)
	ExportAttendanceShape = v.Shape("exportAttendance",
		v.ID("attendanceRowId").Require(),
		v.Enum("format", "csv", "pdf"),
	)

	ListNotificationsShape = v.Shape("listNotifications",
		v.Boolean("unreadOnly").With(v.ToBool),
	)

	FileTokenShape = v.Shape("fileToken",
		v.String("token").Require().MaxLen(512).Match(`^[A-Za-z0-9_.-]+$`),
	)
)
