package whatsapp

import (
	"fmt"
	"strings"
)

// Message templates shared by the scheduler, the command interpreter and the
// payment flow. Kept together so the channel voice stays consistent.

func LessonMessage(title, track, content, tip string, durationMinutes int) string {
	if track == "" {
		track = "General Skills"
	}
	if tip == "" {
		tip = "Practice makes perfect!"
	}
	return fmt.Sprintf(`📚 %s
Track: %s

%s

💡 Pro Tip: %s

⏱️ Duration: %d minutes

Reply NEXT for the next lesson or STATUS to check your progress!`,
		title, track, content, tip, durationMinutes)
}

func WelcomeMessage(name string, tracks []string) string {
	var b strings.Builder
	for _, t := range tracks {
		fmt.Fprintf(&b, "• %s\n", t)
	}
	return fmt.Sprintf(`🎉 Welcome to SkillBoost Kenya, %s!

You've successfully enrolled in:
%s
🔥 Your first 5-minute lesson starts tomorrow!

Reply with:
• NEXT - Get next lesson
• STOP - Pause lessons
• HELP - Get support
• STATUS - Check progress

Ready to boost your skills? Let's go! 💪`, name, b.String())
}

func PaymentConfirmation(receipt string, amount float64, plan string) string {
	return fmt.Sprintf(`🎉 Payment Confirmed!

Receipt: %s
Amount: KES %.0f
Plan: %s Subscription

Your SkillBoost Kenya Premium is now active!

✅ Unlimited lessons
✅ All learning tracks
✅ Progress certificates
✅ Priority support

Your next lesson arrives tomorrow. Reply NEXT to get started!`, receipt, amount, plan)
}

func PaymentFailure(name, reason string) string {
	return fmt.Sprintf(`❌ Payment Failed

Hi %s, your M-Pesa payment couldn't be processed.

Reason: %s

Please try again:
• Ensure you have sufficient balance
• Check if M-Pesa is working
• Try a different number if needed

Need help? Reply HELP`, name, reason)
}
