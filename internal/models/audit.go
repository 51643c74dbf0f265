package models

// Audit actions emitted for calendar mutations.
const (
	AuditActionPlanSave       = "CALENDAR_PLAN_SAVE"
	AuditActionPlanPublish    = "CALENDAR_PLAN_PUBLISH"
	AuditActionPlanDelete     = "CALENDAR_PLAN_DELETE"
	AuditActionPlanExport     = "CALENDAR_PLAN_EXPORT"
	AuditActionTemplateCreate = "WEEKLY_TEMPLATE_CREATE"
	AuditActionTemplateUpdate = "WEEKLY_TEMPLATE_UPDATE"
	AuditActionTemplateDelete = "WEEKLY_TEMPLATE_DELETE"
)

// Audited resource names.
const (
	AuditResourceCalendarPlan   = "calendar_plan"
	AuditResourceWeeklyTemplate = "weekly_template"
)
