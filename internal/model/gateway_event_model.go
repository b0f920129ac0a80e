package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GatewayEventModel 网关调用记录, 每次 prepare/confirm 一行
type GatewayEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`

	OrderId string        `json:"order_id" gorm:"type:varchar(64);not null;index:idx_gateway_event_order_phase"`
	Method  PaymentMethod `json:"method" gorm:"type:varchar(20);not null"`
	Phase   GatewayPhase  `json:"phase" gorm:"type:varchar(20);not null;index:idx_gateway_event_order_phase"`
	Success bool          `json:"success" gorm:"not null;default:false"`

	// confirm 请求已发往网关但结果尚未落库; 为 true 时扣款结果未知
	InFlight bool `json:"in_flight" gorm:"not null;default:false"`

	Tid            string          `json:"tid" gorm:"type:varchar(100)"`
	Aid            string          `json:"aid" gorm:"type:varchar(100)"`
	ApprovedAmount decimal.Decimal `json:"approved_amount" gorm:"type:decimal(15,2);not null;default:0"`
	MethodType     string          `json:"method_type" gorm:"type:varchar(20)"`
	ApprovedAt     *time.Time      `json:"approved_at"`

	// 原始报文, 便于排查与对账
	Request  datatypes.JSON `json:"request"`
	Response datatypes.JSON `json:"response"`
	Error    string         `json:"error" gorm:"type:text"`
}

// GatewayPhase 网关协议阶段
type GatewayPhase string

const (
	GatewayPhasePrepare GatewayPhase = "prepare"
	GatewayPhaseConfirm GatewayPhase = "confirm"
)

// TableName 自定义表名
func (GatewayEventModel) TableName() string {
	return "gateway_event"
}
