package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/model"
)

// maxMediaSize 单个附件上限
const maxMediaSize = 10 << 20

type ProjectHandler struct {
	projectLogic  *logic.ProjectLogic
	donationLogic *logic.DonationLogic
}

func NewProjectHandler(projectLogic *logic.ProjectLogic, donationLogic *logic.DonationLogic) *ProjectHandler {
	return &ProjectHandler{
		projectLogic:  projectLogic,
		donationLogic: donationLogic,
	}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project := &model.ProjectModel{
		Title:         req.Title,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		TargetAmount:  req.TargetAmount,
		MinAmount:     req.MinAmount,
		MaxAmount:     req.MaxAmount,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		CreatorUserId: optionalUserId(c),
		CreatorName:   req.CreatorName,
	}

	options := make([]logic.OptionInput, len(req.Options))
	for i := range req.Options {
		options[i] = req.Options[i].toOptionInput()
	}

	// 调用logic层创建项目
	if err := h.projectLogic.CreateProject(c.Request.Context(), project, options...); err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", ToProjectResponse(project))
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	page := logic.Page{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 20)}
	status := model.ProjectStatus(c.Query("status"))

	projects, total, err := h.projectLogic.GetProjects(c.Request.Context(), status, page)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目列表成功", GetProjectsResponse{
		Projects:   ToProjectResponseList(projects),
		Pagination: newPagination(page.Page, page.PageSize, total),
	})
}

// GetPopularProjects 首页热门项目
func (h *ProjectHandler) GetPopularProjects(c *gin.Context) {
	projects, err := h.projectLogic.GetPopularProjects(c.Request.Context(), queryInt(c, "limit", 4))
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取热门项目成功", ToProjectResponseList(projects))
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	project, media, err := h.projectLogic.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目详情成功", GetProjectResponse{
		Project: ToProjectResponse(project),
		Media:   ToMediaResponseList(media),
	})
}

// UpdateProject 更新项目
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectLogic.UpdateProject(c.Request.Context(), actorFrom(c), id, logic.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		EndTime:     req.EndTime,
		MinAmount:   req.MinAmount,
		MaxAmount:   req.MaxAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目更新成功", ToProjectResponse(project))
}

// CancelProject 取消项目
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectLogic.CancelProject(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已取消", ToProjectResponse(project))
}

// DeleteProject 删除项目, 捐款记录保留
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectLogic.DeleteProject(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已删除", nil)
}

// GetProjectDonations 项目的已完成捐款
func (h *ProjectHandler) GetProjectDonations(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}
	page := logic.Page{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 20)}

	donations, total, err := h.donationLogic.ListProjectDonations(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐款记录成功", GetDonationsResponse{
		Donations:  ToDonationResponseList(donations),
		Pagination: newPagination(page.Page, page.PageSize, total),
	})
}

// GetProjectStats 获取项目统计信息
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.projectLogic.GetProjectStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目统计成功", stats)
}

// UploadMedia 上传项目图片或文档, multipart 字段 file 与 kind
func (h *ProjectHandler) UploadMedia(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, appErrors.NewValidationError("file", "缺少上传文件"))
		return
	}
	if fileHeader.Size > maxMediaSize {
		respondError(c, appErrors.NewValidationError("file", "文件过大"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxMediaSize+1))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(data) > maxMediaSize {
		respondError(c, appErrors.NewValidationError("file", "文件过大"))
		return
	}

	kind := model.MediaKind(c.DefaultPostForm("kind", string(model.MediaKindImage)))
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	media, err := h.projectLogic.AddMedia(c.Request.Context(), actorFrom(c), id, kind, fileHeader.Filename, contentType, data)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "上传成功", ToMediaResponseList([]model.ProjectMediaModel{*media})[0])
}

// DeleteMedia 删除项目附件
func (h *ProjectHandler) DeleteMedia(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}
	mediaId, ok := parseIdParam(c, "mediaId")
	if !ok {
		return
	}

	if err := h.projectLogic.RemoveMedia(c.Request.Context(), actorFrom(c), id, mediaId); err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "附件已删除", nil)
}

// RecalculateAggregate 以账本为准重算项目金额与捐款人数
func (h *ProjectHandler) RecalculateAggregate(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	snapshot, err := h.donationLogic.RecalculateProjectAggregate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "重算完成", snapshot)
}
