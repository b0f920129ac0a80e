package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationModel 捐款账本记录, OrderId 为与支付网关关联的幂等键
type DonationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderId string `json:"order_id" gorm:"type:varchar(64);uniqueIndex;not null"`

	// 项目被删除后置空, 捐款记录保留用于审计
	ProjectId   *int64 `json:"project_id" gorm:"index"`
	DonorUserId *int64 `json:"donor_user_id" gorm:"index"` // 匿名/访客捐款为空

	// 捐款时选择的项目档位, 可为空
	SelectedOptionId *int64 `json:"selected_option_id" gorm:"index"`

	// 捐款人展示信息
	DonorName  string `json:"donor_name" gorm:"type:varchar(100);not null"`
	DonorEmail string `json:"donor_email" gorm:"type:varchar(100)"`
	DonorPhone string `json:"donor_phone" gorm:"type:varchar(20)"`

	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	PaymentMethod     PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentMethodType string          `json:"payment_method_type" gorm:"type:varchar(20)"` // 网关返回的实际支付方式, 如 MONEY, CARD

	Status DonationStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`

	// 网关交易信息, 分阶段写入
	PaymentTid string     `json:"payment_tid" gorm:"type:varchar(100)"`
	PaymentAid string     `json:"payment_aid" gorm:"type:varchar(100)"`
	ApprovedAt *time.Time `json:"approved_at"`

	IsAnonymous bool   `json:"is_anonymous" gorm:"not null;default:false"`
	Message     string `json:"message" gorm:"type:text"`
}

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "donation"
}

// DonationStatus 捐款状态
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"   // 待支付
	DonationStatusCompleted DonationStatus = "COMPLETED" // 支付完成
	DonationStatusCancelled DonationStatus = "CANCELLED" // 用户取消
	DonationStatusFailed    DonationStatus = "FAILED"    // 支付失败
)

// donationTransitions 允许的状态迁移, 终态没有出边
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending: {
		DonationStatusCompleted,
		DonationStatusCancelled,
		DonationStatusFailed,
	},
}

// IsTerminal 是否为终态
func (s DonationStatus) IsTerminal() bool {
	switch s {
	case DonationStatusCompleted, DonationStatusCancelled, DonationStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo 判断迁移是否合法
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodKakaoPay PaymentMethod = "KAKAO_PAY"
	PaymentMethodTossPay  PaymentMethod = "TOSS_PAY" // 预留, 尚未接入
)

// Valid 是否为已声明的支付方式
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodKakaoPay || m == PaymentMethodTossPay
}

// DisplayName 匿名捐款对外隐藏姓名
func (d *DonationModel) DisplayName() string {
	if d.IsAnonymous {
		return "匿名"
	}
	return d.DonorName
}
