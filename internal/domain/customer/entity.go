package customer

import "time"

// Tier は料金区分を表す
type Tier string

const (
	TierRegular Tier = "regular"
	TierMember  Tier = "member"
	TierPremium Tier = "premium"
)

// Customer は購入者エンティティを表す
// UserID は外部の認証基盤が発行するユーザー識別子
type Customer struct {
	ID        string
	UserID    string
	Tier      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer は新しい購入者を作成する
func NewCustomer(userID string, tier Tier) *Customer {
	now := time.Now()
	if tier == "" {
		tier = TierRegular
	}
	return &Customer{
		UserID:    userID,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は購入者の検証を行う
func (c *Customer) Validate() error {
	if c.UserID == "" {
		return ErrUserIDRequired
	}
	return nil
}
