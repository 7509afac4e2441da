package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/handler"
	"github.com/noah-isme/sma-classroom-api/internal/middleware"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-classroom-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-classroom-api/pkg/validation"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type httpMetrics interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Guards groups the route guards by the audience they admit.
type Guards struct {
	Admin   *middleware.Guard
	Teacher *middleware.Guard
	Student *middleware.Guard
	Member  *middleware.Guard
}

// NewGuards builds the standard guard set around one identity strategy.
func NewGuards(strategy middleware.Strategy, opts ...middleware.GuardOption) Guards {
	return Guards{
		Admin:   middleware.NewAdminGuard(strategy, opts...),
		Teacher: middleware.NewRoleGuard("teacher", strategy, []models.UserRole{models.RoleTeacher, models.RoleAdmin}, opts...),
		Student: middleware.NewStudentGuard(strategy, opts...),
		Member:  middleware.NewRoleGuard("member", strategy, []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStudent}, opts...),
	}
}

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	Member       *handler.MemberHandler
	Assignment   *handler.AssignmentHandler
	Grade        *handler.GradeHandler
	Attendance   *handler.AttendanceHandler
	Notification *handler.NotificationHandler
	File         *handler.FileHandler
	Metrics      *handler.MetricsHandler
}

// Deps carries everything New needs to assemble the engine.
type Deps struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	HTTPMetrics    httpMetrics
	Validator      *middleware.Validator
	Guards         Guards
	Audit          auditWriter
	Handlers       Handlers
}

// New builds the gin engine. Every route runs validation first, then its guard,
// then the handler.
func New(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = middleware.NewValidator(nil, deps.Logger, nil)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.HTTPMetrics))

	h := deps.Handlers
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	rt := routes{v: deps.Validator, g: deps.Guards, audit: deps.Audit, logger: deps.Logger}
	api := r.Group(deps.APIPrefix)

	if h.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/login", rt.v.Validate(middleware.SourceBody, dto.LoginShape), h.Auth.Login)
		auth.POST("/logout", rt.g.Member.Middleware(), h.Auth.Logout)
		auth.GET("/me", rt.g.Member.Middleware(), h.Auth.Me)
	}
	if h.Catalog != nil {
		rt.catalog(api, h.Catalog)
	}
	if h.Member != nil {
		members := api.Group("/schools/:schoolId/members")
		members.GET("", rt.pipeline(middleware.SourceQuery, dto.ListMembersShape, rt.g.Admin, h.Member.List)...)
		members.POST("", rt.pipeline(middleware.SourceEnvelope, dto.AddMemberShape, rt.g.Admin, rt.audited("MEMBER_ADD", "member"), h.Member.Add)...)
		members.DELETE("/:memberId", rt.pipeline(middleware.SourceQuery, dto.RemoveMemberShape, rt.g.Admin, rt.audited("MEMBER_REMOVE", "member"), h.Member.Remove)...)
	}
	if h.Assignment != nil {
		assignments := api.Group("/assignments")
		assignments.GET("", rt.pipeline(middleware.SourceQuery, dto.ListAssignmentsShape, rt.g.Member, h.Assignment.List)...)
		assignments.GET("/:id", rt.pipeline(middleware.SourceQuery, dto.IDParamShape, rt.g.Member, h.Assignment.Get)...)
		assignments.POST("", rt.pipeline(middleware.SourceBody, dto.CreateAssignmentShape, rt.g.Teacher, h.Assignment.Create)...)
		assignments.PATCH("/:id", rt.pipeline(middleware.SourceEnvelope, dto.UpdateAssignmentShape, rt.g.Teacher, h.Assignment.Update)...)
		assignments.POST("/:id/submissions", rt.pipeline(middleware.SourceEnvelope, dto.SubmitAssignmentShape, rt.g.Student, h.Assignment.Submit)...)
		assignments.POST("/:id/submissions/:submissionId/attachment", rt.pipeline(middleware.SourceQuery, dto.SubmissionParamShape, rt.g.Student, h.Assignment.UploadAttachment)...)
		if h.Grade != nil {
			assignments.POST("/:id/grades", rt.pipeline(middleware.SourceEnvelope, dto.GradeSubmissionShape, rt.g.Teacher, h.Grade.Grade)...)
		}
	}
	if h.Grade != nil {
		api.GET("/grades/me", rt.g.Student.Middleware(), h.Grade.ListMine)
	}
	if h.Attendance != nil {
		attendance := api.Group("/attendance")
		attendance.POST("", rt.pipeline(middleware.SourceBody, dto.CreateAttendanceShape, rt.g.Teacher, h.Attendance.Create)...)
		attendance.PATCH("/:attendanceRowId/records", rt.pipeline(middleware.SourceEnvelope, dto.UpdateAttendanceRecordShape, rt.g.Teacher, h.Attendance.UpdateRecord)...)
		attendance.GET("/:attendanceRowId/export", rt.pipeline(middleware.SourceQuery, dto.ExportAttendanceShape, rt.g.Teacher, h.Attendance.Export)...)
	}
	if h.Notification != nil {
		notifications := api.Group("/notifications")
		notifications.GET("", rt.pipeline(middleware.SourceQuery, dto.ListNotificationsShape, rt.g.Member, h.Notification.List)...)
		notifications.PATCH("/:id/read", rt.pipeline(middleware.SourceQuery, dto.IDParamShape, rt.g.Member, h.Notification.MarkRead)...)
	}
	if h.File != nil {
		// The signed token authorizes the download.
		api.GET("/files/:token", rt.v.Validate(middleware.SourceQuery, dto.FileTokenShape), h.File.Download)
	}

	return r
}

type routes struct {
	v      *middleware.Validator
	g      Guards
	audit  auditWriter
	logger *zap.Logger
}

func (rt routes) catalog(api *gin.RouterGroup, h *handler.CatalogHandler) {
	type resource struct {
		path        string
		list        gin.HandlerFunc
		create      gin.HandlerFunc
		createShape *validation.ShapeSpec
		update      gin.HandlerFunc
		updateShape *validation.ShapeSpec
		delete      gin.HandlerFunc
	}
	resources := []resource{
		{"/subjects", h.ListSubjects, h.CreateSubject, dto.CreateSubjectShape, h.UpdateSubject, dto.UpdateSubjectShape, h.DeleteSubject},
		{"/skills", h.ListSkills, h.CreateSkill, dto.CreateSkillShape, h.UpdateSkill, dto.UpdateSkillShape, h.DeleteSkill},
		{"/careers", h.ListCareers, h.CreateCareer, dto.CreateCareerShape, h.UpdateCareer, dto.UpdateCareerShape, h.DeleteCareer},
	}
	for _, res := range resources {
		name := res.path[1:]
		group := api.Group(res.path)
		group.GET("", rt.pipeline(middleware.SourceQuery, dto.ListQueryShape, rt.g.Member, res.list)...)
		group.POST("", rt.pipeline(middleware.SourceBody, res.createShape, rt.g.Admin, rt.audited("CATALOG_CREATE", name), res.create)...)
		group.PATCH("/:id", rt.pipeline(middleware.SourceEnvelope, res.updateShape, rt.g.Admin, rt.audited("CATALOG_UPDATE", name), res.update)...)
		group.DELETE("/:id", rt.pipeline(middleware.SourceQuery, dto.IDParamShape, rt.g.Admin, rt.audited("CATALOG_DELETE", name), res.delete)...)
	}
}

// pipeline orders a route as validate, guard, then the remaining handlers.
func (rt routes) pipeline(source middleware.Source, shape *validation.ShapeSpec, guard *middleware.Guard, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{rt.v.Validate(source, shape), guard.Middleware()}
	return append(chain, handlers...)
}

func (rt routes) audited(action, resource string) gin.HandlerFunc {
	if rt.audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Audit(rt.audit, rt.logger, action, resource)
}
