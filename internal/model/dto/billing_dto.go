package dto

// BillingEventRequest 支付侧生命周期事件回调
// event: trial_activated / subscribed / renewed
type BillingEventRequest struct {
	UserID int64   `json:"user_id" binding:"required"`
	Event  string  `json:"event" binding:"required"`
	Amount float64 `json:"amount"` // subscribed 事件的订阅金额，奖励计算用
}
