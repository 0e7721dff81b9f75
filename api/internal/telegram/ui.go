package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// The fixed region set; AwaitRegion accepts nothing else.
var regions = []string{
	"Tashkent", "Andijan", "Fergana", "Namangan", "Samarkand", "Bukhara",
	"Navoi", "Kashkadarya", "Surkhandarya", "Jizzakh", "Sirdarya", "Khorezm",
	"Karakalpakstan", "Other",
}

func validRegion(s string) bool {
	for _, r := range regions {
		if r == s {
			return true
		}
	}
	return false
}

const (
	cbConfirmAnswerYes = "confirm_a_yes"
	cbConfirmAnswerNo  = "confirm_a_no"

	// imageQuestion marks a question that arrived as a photo; the evaluation
	// prompt carries it through as-is.
	imageQuestion = "[Image Attached]"

	msgWelcome = "👋 Welcome! What is your full name?\n" +
		"By sharing your info, you agree to its use in marketing/advertising purposes.\n" +
		"Your data is securely stored."
	msgGenericFailure = "⚠️ Something went wrong. Please try again with /start."
	msgQuotaDenied    = "❌ You have already submitted this task today. Please wait until 00:00 UTC."
)

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("📞 Share Contact")),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func regionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(regions))
	for _, reg := range regions {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(reg)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func taskKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Task 1"),
			tgbotapi.NewKeyboardButton("Task 2"),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmAnswerKeyboard() tgbotapi.InlineKeyboardMarkup {
	yes := tgbotapi.NewInlineKeyboardButtonData("Yes", cbConfirmAnswerYes)
	no := tgbotapi.NewInlineKeyboardButtonData("No", cbConfirmAnswerNo)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(yes, no))
}
