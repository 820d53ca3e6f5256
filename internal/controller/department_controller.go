package controller

import (
	"scms_backend/internal/model"
	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DepartmentController struct {
	Directory *service.Directory
}

func NewDepartmentController(directory *service.Directory) *DepartmentController {
	return &DepartmentController{Directory: directory}
}

type DepartmentSuggestion struct {
	Category   model.ComplaintCategory `json:"category"`
	Department model.Department        `json:"department"`
}

// List godoc
// @Summary 部门目录
// @Tags 部门
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Department}
// @Router /api/departments [get]
func (c *DepartmentController) List(ctx *gin.Context) {
	util.Success(ctx, c.Directory.List())
}

// Suggest godoc
// @Summary 按分类推荐处理部门
// @Tags 部门
// @Security BearerAuth
// @Produce json
// @Param category query string true "投诉分类"
// @Success 200 {object} util.Response{data=DepartmentSuggestion}
// @Failure 400 {object} util.Response "分类无效"
// @Router /api/departments/suggest [get]
func (c *DepartmentController) Suggest(ctx *gin.Context) {
	category := model.ComplaintCategory(ctx.Query("category"))
	if !category.Valid() {
		util.BadRequest(ctx, "invalid category")
		return
	}
	dept, ok := c.Directory.Lookup(service.SuggestDepartment(category))
	if !ok {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, DepartmentSuggestion{Category: category, Department: dept})
}
