package keywords

import "shop-relay/domain"

const HandoffLabel = "handoff"

// Topics are the analytics categories extracted from customer messages.
var Topics = map[string][]string{
	"greeting": {"xin chào", "hello", "hi", "chào", "hey", "alo"},
	"product":  {"sản phẩm", "quần áo", "áo", "váy", "giày", "đồ", "mua"},
	"price":    {"giá", "bao nhiêu", "giá cả", "chi phí", "tiền"},
	"order":    {"đặt hàng", "order", "mua hàng"},
	"shipping": {"giao hàng", "ship", "vận chuyển", "nhận hàng"},
	"return":   {"đổi", "trả", "hoàn", "bảo hành", "đổi trả"},
	"payment":  {"thanh toán", "trả tiền", "payment", "momo", "cod"},
	"help":     {"giúp", "hỗ trợ", "help", "trợ giúp"},
}

// NewHandoffMatcher detects a customer asking for a human.
func NewHandoffMatcher() (*Matcher, error) {
	return NewMatcher(map[string][]string{HandoffLabel: domain.HandoffKeywords})
}

// NewTopicMatcher extracts the analytics categories.
func NewTopicMatcher() (*Matcher, error) {
	return NewMatcher(Topics)
}
