package bot

import "fmt"

const helpReply = `🆘 SkillBoost Kenya Help

Commands:
• NEXT - Get next lesson
• STOP - Pause lessons
• START - Resume lessons
• STATUS - Check progress
• UPGRADE - Premium plans

Need more help? Reply to this message.`

const stopReply = "⏸️ Lessons paused. Reply START to resume anytime. We'll miss you!"

const startReply = "🎉 Welcome back! Your lessons will resume tomorrow. Ready to learn?"

const completedReply = "🎉 You've completed all available lessons! Check back for new content or upgrade for advanced courses."

const enrollFirstReply = "Please enroll first at skillboost-kenya.lovable.app"

const upgradeReply = `🚀 SkillBoost Premium Plans:

Weekly: KES 50/week
Monthly: KES 150/month

Benefits:
✅ Unlimited lessons
✅ All tracks included
✅ Progress certificates
✅ Priority support

Upgrade: skillboost-kenya.lovable.app`

func statusReply(completed, tracks, certificates int) string {
	return fmt.Sprintf(`📊 Your SkillBoost Progress:

Lessons Completed: %d
Certificates Earned: %d
Active Tracks: %d

Keep it up! You're doing great! 💪`, completed, certificates, tracks)
}

func unknownReply(text string) string {
	return fmt.Sprintf(`Thanks for your message! 😊

I didn't understand "%s".

Try these commands:
• HELP - Get help
• NEXT - Next lesson
• STATUS - Your progress`, text)
}
