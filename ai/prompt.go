package ai

import (
	"fmt"
	"shop-relay/domain"
	"shop-relay/repositories"
	"strings"
	"unicode/utf8"
)

// SystemPrompt sets the persona of the shop assistant.
const SystemPrompt = `Bạn là trợ lý ảo thông minh của cửa hàng thời trang Forever. Nhiệm vụ của bạn:

1. Chào đón và hỗ trợ khách hàng một cách thân thiện, lịch sự
2. Trả lời các câu hỏi về:
   - Sản phẩm: quần áo, giày dép, phụ kiện thời trang
   - Giá cả và khuyến mãi
   - Chính sách đổi trả: Trong vòng 7 ngày nếu còn nguyên tem mác, chưa qua sử dụng
   - Giao hàng: 2-5 ngày trong nội thành, 5-7 ngày ngoại thành
   - Thanh toán: Hỗ trợ COD, chuyển khoản, thẻ tín dụng, Stripe, MoMo

3. Hướng dẫn sử dụng website:
   - Cách đặt hàng: Chọn sản phẩm → Thêm vào giỏ → Checkout
   - Cách theo dõi đơn hàng: Vào mục "Orders" sau khi đăng nhập
   - Cách tạo tài khoản và đăng nhập

4. Xử lý tình huống:
   - Nếu câu hỏi quá phức tạp hoặc cần hỗ trợ đặc biệt → "Để tôi kết nối bạn với nhân viên hỗ trợ nhé!"
   - Luôn trả lời bằng tiếng Việt
   - Câu trả lời ngắn gọn, súc tích (2-4 câu)
   - Thân thiện, nhiệt tình, chuyên nghiệp

5. Không được:
   - Cung cấp thông tin sai lệch về shop
   - Đưa ra lời khuyên y tế, pháp lý
   - Nói xấu đối thủ cạnh tranh
   - Trả lời những câu hỏi không liên quan đến shop thời trang

Phong cách: Giống như một nhân viên bán hàng thân thiện, am hiểu sản phẩm và luôn sẵn sàng giúp đỡ!`

const (
	productsHeader      = "SẢN PHẨM CÓ SẴN TRONG SHOP:"
	productsFooter      = "Lưu ý: Khi khách hỏi về sản phẩm cụ thể, hãy đề xuất từ danh sách trên và nói rõ giá, size có sẵn."
	ProductsUnavailable = "(Dữ liệu sản phẩm đang được cập nhật...)"
	historyHeader       = "Lịch sử chat gần đây:"
	descriptionRunes    = 100
)

// BuildPrompt assembles the single prompt sent to the generator.
// Only the last domain.PromptContextSize messages of history are used.
func BuildPrompt(productContext string, history []domain.ChatMessage, userMessage string) string {
	var sb strings.Builder
	sb.WriteString(SystemPrompt)
	sb.WriteString("\n")
	sb.WriteString(productContext)
	sb.WriteString("\n")

	if len(history) > domain.PromptContextSize {
		history = history[len(history)-domain.PromptContextSize:]
	}
	if len(history) > 0 {
		sb.WriteString("\n" + historyHeader + "\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", speaker(m), m.Message)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Khách hàng: %s\n\nBot:", userMessage)
	return sb.String()
}

// speaker labels admin and bot turns as the shop side.
func speaker(m domain.ChatMessage) string {
	if domain.IsReserved(m.Sender) {
		return "Bot"
	}
	return "Khách"
}

// FormatProducts renders the catalog block of the prompt, one product per line.
func FormatProducts(products []repositories.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		line := fmt.Sprintf("- %s (%s/%s): $%s - %s... [Sizes: %s]",
			p.Name, p.Category, p.SubCategory, formatPrice(p.Price), truncate(p.Description, descriptionRunes), strings.Join(p.Sizes, ", "))
		if p.Bestseller {
			line += " ⭐ BESTSELLER"
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("\n%s\n%s\n\n%s\n", productsHeader, strings.Join(lines, "\n"), productsFooter)
}

func formatPrice(price float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", price), "0"), ".")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
