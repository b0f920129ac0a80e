package handler

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 项目相关请求/响应模型

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl" binding:"omitempty,max=500"`
	Category     string          `json:"category" binding:"omitempty,max=50"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"required,dgt0"`
	MinAmount    decimal.Decimal `json:"minAmount"`
	MaxAmount    decimal.Decimal `json:"maxAmount"`
	StartTime    time.Time       `json:"startTime" binding:"required"`
	EndTime      time.Time       `json:"endTime" binding:"required"`
	CreatorName  string          `json:"creatorName" binding:"omitempty,max=100"`

	Options []DonationOptionRequest `json:"options" binding:"omitempty,dive"`
}

// DonationOptionRequest 捐款档位
type DonationOptionRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description" binding:"max=500"`
	Amount       decimal.Decimal `json:"amount" binding:"required,dgt0"`
	IconEmoji    string          `json:"iconEmoji" binding:"max=10"`
	DisplayOrder *int            `json:"displayOrder"`
	IsActive     *bool           `json:"isActive"`
}

// UpdateProjectRequest 更新项目请求, 只更新出现的字段
type UpdateProjectRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl" binding:"omitempty,max=500"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
	EndTime     *time.Time       `json:"endTime"`
	MinAmount   *decimal.Decimal `json:"minAmount"`
	MaxAmount   *decimal.Decimal `json:"maxAmount"`
}

// ProjectResponse 项目响应模型
type ProjectResponse struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
	CreatorUserId *int64          `json:"creatorUserId"`
	CreatorName   string          `json:"creatorName"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	DonorCount    int64           `json:"donorCount"`
	MinAmount     decimal.Decimal `json:"minAmount"`
	MaxAmount     decimal.Decimal `json:"maxAmount"`
	Status        string          `json:"status"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MediaResponse 项目附件
type MediaResponse struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetProjectsResponse 获取项目列表响应
type GetProjectsResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	Pagination Pagination        `json:"pagination"`
}

// GetProjectResponse 获取项目详情响应
type GetProjectResponse struct {
	Project ProjectResponse `json:"project"`
	Media   []MediaResponse `json:"media"`
}

// 捐款相关请求/响应模型

// CreateDonationRequest 创建捐款请求
type CreateDonationRequest struct {
	ProjectId     int64               `json:"projectId" binding:"required,gt=0"`
	Amount        decimal.Decimal     `json:"amount" binding:"required,dgt0"`
	DonorName     string              `json:"donorName" binding:"max=100"`
	DonorEmail    string              `json:"donorEmail" binding:"omitempty,email,max=100"`
	DonorPhone    string              `json:"donorPhone" binding:"omitempty,max=20"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=KAKAO_PAY TOSS_PAY"`
	IsAnonymous   bool                `json:"isAnonymous"`
	Message       string              `json:"message" binding:"max=500"`

	SelectedOptionId *int64 `json:"selectedOptionId" binding:"omitempty,gt=0"`
}

// DonationResponse 捐款响应, 匿名捐款不返回联系方式
type DonationResponse struct {
	ID            int64           `json:"id"`
	OrderId       string          `json:"orderId"`
	ProjectId     *int64          `json:"projectId"`
	DonorName     string          `json:"donorName"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	ApprovedAt    *time.Time      `json:"approvedAt"`
	IsAnonymous   bool            `json:"isAnonymous"`
	Message       string          `json:"message"`
	CreatedAt     time.Time       `json:"createdAt"`

	SelectedOptionId *int64 `json:"selectedOptionId"`
}

// DonationOptionResponse 捐款档位
type DonationOptionResponse struct {
	ID           int64           `json:"id"`
	ProjectId    int64           `json:"projectId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	IconEmoji    string          `json:"iconEmoji"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     bool            `json:"isActive"`
}

// GetDonationsResponse 捐款列表
type GetDonationsResponse struct {
	Donations  []DonationResponse `json:"donations"`
	Pagination Pagination         `json:"pagination"`
}

// ReadyPaymentResponse prepare 结果
type ReadyPaymentResponse struct {
	OrderId           string `json:"orderId"`
	Tid               string `json:"tid"`
	RedirectPCURL     string `json:"nextRedirectPcUrl"`
	RedirectMobileURL string `json:"nextRedirectMobileUrl"`
	RedirectAppURL    string `json:"nextRedirectAppUrl"`
}

// NotificationResponse 站内通知
type NotificationResponse struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// 转换函数

// ToProjectResponse 将数据库模型转换为响应模型
func ToProjectResponse(project *model.ProjectModel) ProjectResponse {
	return ProjectResponse{
		ID:            project.Id,
		Title:         project.Title,
		Description:   project.Description,
		ImageURL:      project.ImageURL,
		Category:      project.Category,
		CreatorUserId: project.CreatorUserId,
		CreatorName:   project.CreatorName,
		TargetAmount:  project.TargetAmount,
		CurrentAmount: project.CurrentAmount,
		DonorCount:    project.DonorCount,
		MinAmount:     project.MinAmount,
		MaxAmount:     project.MaxAmount,
		Status:        string(project.Status),
		StartTime:     project.StartTime,
		EndTime:       project.EndTime,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
}

// ToProjectResponseList 将数据库模型列表转换为响应模型列表
func ToProjectResponseList(projects []model.ProjectModel) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i := range projects {
		result[i] = ToProjectResponse(&projects[i])
	}
	return result
}

func ToMediaResponseList(media []model.ProjectMediaModel) []MediaResponse {
	result := make([]MediaResponse, len(media))
	for i, m := range media {
		result[i] = MediaResponse{
			ID:           m.Id,
			Kind:         string(m.Kind),
			URL:          m.Path,
			OriginalName: m.OriginalName,
			ContentType:  m.ContentType,
			Size:         m.Size,
			CreatedAt:    m.CreatedAt,
		}
	}
	return result
}

// ToDonationResponse 匿名捐款只展示"匿名"
func ToDonationResponse(donation *model.DonationModel) DonationResponse {
	return DonationResponse{
		ID:            donation.Id,
		OrderId:       donation.OrderId,
		ProjectId:     donation.ProjectId,
		DonorName:     donation.DisplayName(),
		Amount:        donation.Amount,
		PaymentMethod: string(donation.PaymentMethod),
		Status:        string(donation.Status),
		ApprovedAt:    donation.ApprovedAt,
		IsAnonymous:   donation.IsAnonymous,
		Message:       donation.Message,
		CreatedAt:     donation.CreatedAt,

		SelectedOptionId: donation.SelectedOptionId,
	}
}

func ToDonationOptionResponse(option *model.DonationOptionModel) DonationOptionResponse {
	return DonationOptionResponse{
		ID:           option.Id,
		ProjectId:    option.ProjectId,
		Name:         option.Name,
		Description:  option.Description,
		Amount:       option.Amount,
		IconEmoji:    option.IconEmoji,
		DisplayOrder: option.DisplayOrder,
		IsActive:     option.IsActive,
	}
}

func ToDonationOptionResponseList(options []model.DonationOptionModel) []DonationOptionResponse {
	result := make([]DonationOptionResponse, len(options))
	for i := range options {
		result[i] = ToDonationOptionResponse(&options[i])
	}
	return result
}

func ToDonationResponseList(donations []model.DonationModel) []DonationResponse {
	result := make([]DonationResponse, len(donations))
	for i := range donations {
		result[i] = ToDonationResponse(&donations[i])
	}
	return result
}

func ToReadyPaymentResponse(redirect *logic.PaymentRedirect) ReadyPaymentResponse {
	return ReadyPaymentResponse{
		OrderId:           redirect.OrderId,
		Tid:               redirect.Tid,
		RedirectPCURL:     redirect.RedirectPCURL,
		RedirectMobileURL: redirect.RedirectMobileURL,
		RedirectAppURL:    redirect.RedirectAppURL,
	}
}

func ToNotificationResponseList(notifications []model.NotificationModel) []NotificationResponse {
	result := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		result[i] = NotificationResponse{
			ID:        n.Id,
			Type:      n.Type,
			Category:  n.Category,
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		}
	}
	return result
}

// toCreateDonationInput 请求转换为业务参数, 未指定支付方式时使用 def
func (r *CreateDonationRequest) toCreateDonationInput(userId *int64, def model.PaymentMethod) logic.CreateDonationInput {
	method := r.PaymentMethod
	if method == "" {
		method = def
	}
	return logic.CreateDonationInput{
		ProjectId:     r.ProjectId,
		DonorUserId:   userId,
		Amount:        r.Amount,
		DonorName:     r.DonorName,
		DonorEmail:    r.DonorEmail,
		DonorPhone:    r.DonorPhone,
		PaymentMethod: method,
		IsAnonymous:   r.IsAnonymous,
		Message:       r.Message,

		SelectedOptionId: r.SelectedOptionId,
	}
}

func (r *DonationOptionRequest) toOptionInput() logic.OptionInput {
	return logic.OptionInput{
		Name:         r.Name,
		Description:  r.Description,
		Amount:       r.Amount,
		IconEmoji:    r.IconEmoji,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive,
	}
}
