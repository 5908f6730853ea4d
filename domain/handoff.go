package domain

import "time"

const (
	// AdminActiveWindow is how long a human admin message keeps the bot quiet.
	AdminActiveWindow = 30 * time.Minute
	// SuppressionLookback is the number of latest messages inspected for admin activity.
	SuppressionLookback = 10
	// PromptContextSize is the number of latest messages given to the generator.
	PromptContextSize = 5
	// BotReplyDelay is applied before a bot message is delivered.
	BotReplyDelay = time.Second
)

const (
	HandoffReply       = "Dạ, mình đã thông báo cho nhân viên hỗ trợ rồi ạ. Vui lòng đợi trong giây lát, nhân viên sẽ kết nối với bạn ngay! 🙏"
	HandoffAdminNotice = "🔔 Khách hàng yêu cầu hỗ trợ từ nhân viên!"
)

// HandoffKeywords signal that the customer asks for a human.
var HandoffKeywords = []string{"người thật", "admin", "nhân viên", "quản lý", "người quản lý", "con người"}

// IsAdminActive reports whether history holds an admin message written less than
// AdminActiveWindow before now. history is expected to be the latest SuppressionLookback messages.
func IsAdminActive(history []ChatMessage, now time.Time) bool {
	for _, m := range history {
		if m.Sender == AdminIdentity && now.Sub(m.Timestamp) < AdminActiveWindow {
			return true
		}
	}
	return false
}
