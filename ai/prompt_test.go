package ai

import (
	"shop-relay/domain"
	"shop-relay/repositories"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	message := func(sender, receiver, text string) domain.ChatMessage {
		return domain.ChatMessage{Sender: sender, Receiver: receiver, Message: text, Timestamp: at}
	}

	t.Run("should label turns and keep only the latest context", func(t *testing.T) {
		req := require.New(t)
		history := []domain.ChatMessage{
			message("u1", domain.AdminIdentity, "tin 1"),
			message("u1", domain.AdminIdentity, "tin 2"),
			message(domain.BotIdentity, "u1", "tin 3"),
			message("u1", domain.AdminIdentity, "tin 4"),
			message(domain.AdminIdentity, "u1", "tin 5"),
			message("u1", domain.AdminIdentity, "tin 6"),
		}

		prompt := BuildPrompt("\nCATALOG\n", history, "tin 6")

		req.True(strings.HasPrefix(prompt, SystemPrompt))
		req.Contains(prompt, "CATALOG")
		req.Contains(prompt, "Lịch sử chat gần đây:\nKhách: tin 2\nBot: tin 3\nKhách: tin 4\nBot: tin 5\nKhách: tin 6\n")
		req.NotContains(prompt, "tin 1")
		req.True(strings.HasSuffix(prompt, "Khách hàng: tin 6\n\nBot:"))
	})

	t.Run("should omit the history block without history", func(t *testing.T) {
		req := require.New(t)
		prompt := BuildPrompt("", nil, "xin chào")
		req.NotContains(prompt, "Lịch sử chat gần đây:")
		req.True(strings.HasSuffix(prompt, "Khách hàng: xin chào\n\nBot:"))
	})
}

func TestFormatProducts(t *testing.T) {
	req := require.New(t)

	block := FormatProducts([]repositories.Product{
		{Name: "Áo thun", Category: "Men", SubCategory: "Topwear", Price: 25, Description: "Cotton", Sizes: []string{"M", "L"}, Bestseller: true},
		{Name: "Váy", Category: "Women", SubCategory: "Dress", Price: 40.5, Description: strings.Repeat("x", 150), Sizes: []string{"S"}},
	})

	req.Contains(block, "SẢN PHẨM CÓ SẴN TRONG SHOP:\n")
	req.Contains(block, "- Áo thun (Men/Topwear): $25 - Cotton... [Sizes: M, L] ⭐ BESTSELLER\n")
	req.Contains(block, "- Váy (Women/Dress): $40.5 - "+strings.Repeat("x", 100)+"... [Sizes: S]\n")
	req.Contains(block, "hãy đề xuất từ danh sách trên")
}
