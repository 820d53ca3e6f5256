package controller

import (
	"scms_backend/internal/model"
	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ComplaintController struct {
	ComplaintService *service.ComplaintService
}

func NewComplaintController(complaintService *service.ComplaintService) *ComplaintController {
	return &ComplaintController{ComplaintService: complaintService}
}

type UpdateStatusRequest struct {
	Status          model.ComplaintStatus `json:"status" binding:"required"`
	ExpectedVersion int64                 `json:"expectedVersion"`
}

type EscalateRequest struct {
	ExpectedVersion int64 `json:"expectedVersion"`
}

// canAccess 学生只能访问自己的投诉，部门负责人只能访问分配给本部门的投诉
func canAccess(actor model.Actor, c model.Complaint) bool {
	switch actor.Role {
	case model.Admin:
		return true
	case model.DepartmentHead:
		return actor.Department != "" && c.AssignedDepartment == actor.Department
	case model.Student:
		return c.StudentID == actor.ID
	default:
		return false
	}
}

func toViews(list []model.Complaint) []service.ComplaintView {
	views := make([]service.ComplaintView, 0, len(list))
	for _, c := range list {
		views = append(views, service.NewComplaintView(c))
	}
	return views
}

// loadAccessible 取投诉并检查访问权限，失败时已写入响应
func (ctrl *ComplaintController) loadAccessible(ctx *gin.Context, actor model.Actor) (model.Complaint, bool) {
	complaint, err := ctrl.ComplaintService.Get(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return complaint, false
	}
	if !canAccess(actor, complaint) {
		util.Forbidden(ctx)
		return complaint, false
	}
	return complaint, true
}

// Submit godoc
// @Summary 学生提交投诉
// @Tags 投诉
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param complaint body service.Submission true "投诉内容"
// @Success 201 {object} util.Response{data=service.ComplaintView}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/complaints [post]
func (ctrl *ComplaintController) Submit(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var sub service.Submission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub.StudentID = actor.ID
	sub.StudentName = actor.Name
	sub.University = actor.University

	complaint, err := ctrl.ComplaintService.Submit(sub)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, service.NewComplaintView(complaint))
}

// List godoc
// @Summary 投诉列表
// @Description 支持按状态、分类、优先级、高校、部门、级别、日期范围过滤和关键字搜索
// @Tags 投诉
// @Security BearerAuth
// @Produce json
// @Param status query string false "状态"
// @Param category query string false "分类"
// @Param priority query string false "优先级"
// @Param university query string false "高校"
// @Param department query string false "部门"
// @Param escalationLevel query int false "升级级别"
// @Param from query string false "提交日期起 (YYYY-MM-DD)"
// @Param to query string false "提交日期止 (YYYY-MM-DD)"
// @Param search query string false "关键字"
// @Param critical query bool false "仅严重"
// @Param sort query string false "date|urgency|status|priority|updated"
// @Param desc query bool false "倒序"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/complaints [get]
func (ctrl *ComplaintController) List(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var filter service.ComplaintFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	var sortOpts service.SortOptions
	if err := ctx.ShouldBindQuery(&sortOpts); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	switch actor.Role {
	case model.Student:
		filter.StudentID = actor.ID
	case model.DepartmentHead:
		if actor.Department == "" {
			util.Forbidden(ctx)
			return
		}
		filter.AssignedDepartment = actor.Department
	}

	page := util.MustParseInt(ctx.DefaultQuery("page", "1"), 1)
	limit := util.MustParseInt(ctx.DefaultQuery("limit", "20"), defaultPageSize)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	all := ctrl.ComplaintService.List(filter, sortOpts)
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	util.Success(ctx, util.PageResponse{
		List:  toViews(all[start:end]),
		Total: int64(len(all)),
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 投诉详情
// @Tags 投诉
// @Security BearerAuth
// @Produce json
// @Param id path string true "投诉编号"
// @Success 200 {object} util.Response{data=service.ComplaintView}
// @Failure 404 {object} util.Response "投诉不存在"
// @Router /api/complaints/{id} [get]
func (ctrl *ComplaintController) Get(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	complaint, ok := ctrl.loadAccessible(ctx, actor)
	if !ok {
		return
	}
	util.Success(ctx, service.NewComplaintView(complaint))
}

// UpdateStatus godoc
// @Summary 更新投诉状态
// @Tags 投诉
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "投诉编号"
// @Param request body UpdateStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=service.ComplaintView}
// @Failure 409 {object} util.Response "版本冲突"
// @Failure 422 {object} util.Response "不允许的状态流转"
// @Router /api/complaints/{id}/status [put]
func (ctrl *ComplaintController) UpdateStatus(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, ok := ctrl.loadAccessible(ctx, actor); !ok {
		return
	}

	complaint, err := ctrl.ComplaintService.UpdateStatus(ctx.Param("id"), req.Status, actor.Name, req.ExpectedVersion)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.NewComplaintView(complaint))
}

// Assign godoc
// @Summary 分配处理部门
// @Description 写入部门、负责人、分配人和分配时间，状态变为 In Progress
// @Tags 投诉
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "投诉编号"
// @Param request body service.AssignInput true "部门"
// @Success 200 {object} util.Response{data=service.ComplaintView}
// @Router /api/complaints/{id}/assign [post]
func (ctrl *ComplaintController) Assign(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.AssignedBy = actor.Name

	complaint, err := ctrl.ComplaintService.AssignDepartment(ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.NewComplaintView(complaint))
}

// Escalate godoc
// @Summary 升级投诉
// @Description 状态置为 Escalated，级别加一（最高 Dean Level）
// @Tags 投诉
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "投诉编号"
// @Param request body EscalateRequest false "版本号"
// @Success 200 {object} util.Response{data=service.ComplaintView}
// @Failure 422 {object} util.Response "已解决的投诉不能升级"
// @Router /api/complaints/{id}/escalate [post]
func (ctrl *ComplaintController) Escalate(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req EscalateRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	complaint, err := ctrl.ComplaintService.Escalate(ctx.Param("id"), actor.Name, req.ExpectedVersion)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.NewComplaintView(complaint))
}

// AddComment godoc
// @Summary 添加评论
// @Tags 投诉
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "投诉编号"
// @Param request body service.CommentInput true "评论"
// @Success 201 {object} util.Response{data=service.ComplaintView}
// @Router /api/complaints/{id}/comments [post]
func (ctrl *ComplaintController) AddComment(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.CommentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, ok := ctrl.loadAccessible(ctx, actor); !ok {
		return
	}
	req.Author = actor.Name
	req.Role = actor.Role

	complaint, err := ctrl.ComplaintService.AddComment(ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, service.NewComplaintView(complaint))
}
