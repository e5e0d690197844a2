package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"remindbot/internal/remind"
	"remindbot/internal/sched"
	"remindbot/internal/storage"
)

const helpText = `我是提醒小幫手 ⏰

直接傳訊息設定提醒，例如：
  6月12日 15:30 看牙醫
  2025/7/1 09:00 繳房租 提前30分鐘提醒

沒寫提前幾分鐘時，預設提前 15 分鐘通知。

指令：
  /list    查看目前的提醒
  /clear   清除所有提醒
  /history 最近的通知紀錄
  /status  排程狀態`

const timeLayout = "2006/01/02 15:04"

// renderResult turns a submission result into the user-facing reply.
func renderResult(res remind.SubmissionResult, loc *time.Location) string {
	switch res.Outcome {
	case remind.OutcomeScheduled:
		r := res.Reminder
		label := r.Label
		if label == "" {
			label = "（未填寫內容）"
		}
		return fmt.Sprintf("✅ 已設定提醒：%s\n時間：%s\n提前 %d 分鐘通知",
			label, r.TriggerAt.In(loc).Format(timeLayout), r.LeadMinutes)

	case remind.OutcomeParseFailed:
		return renderParseFailure(res.Reason)

	case remind.OutcomeCleared:
		if res.Cleared == 0 {
			return "目前沒有提醒可以清除"
		}
		return fmt.Sprintf("已清除 %d 個提醒", res.Cleared)

	case remind.OutcomeListed:
		return renderJobList(res.Jobs, loc)
	}
	return "發生未預期的狀況，請再試一次"
}

func renderParseFailure(reason error) string {
	switch {
	case errors.Is(reason, remind.ErrNoTimestamp):
		return "看不懂時間格式 😅\n請用「6月12日 15:30 做什麼」這樣的格式"
	case errors.Is(reason, remind.ErrInvalidCalendarDate):
		return "這個日期不存在，請再確認一次"
	case errors.Is(reason, remind.ErrPastTime):
		return "這個時間已經過去了，請設定未來的時間"
	case errors.Is(reason, remind.ErrInvalidLead):
		return "提前分鐘數不正確，請用正整數"
	}
	return "看不懂這則訊息，輸入 /help 看使用方式"
}

func renderJobList(jobs []sched.Job, loc *time.Location) string {
	if len(jobs) == 0 {
		return "目前沒有提醒"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "目前有 %d 個提醒：\n", len(jobs))
	for i, j := range jobs {
		label := j.Payload.Label
		if label == "" {
			label = "（未填寫內容）"
		}
		fmt.Fprintf(&b, "%d. %s %s（提前%d分鐘）\n",
			i+1, j.Payload.TriggerAt.In(loc).Format(timeLayout), label, j.Payload.LeadMinutes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderReminderFire is the delayed notification text.
func renderReminderFire(job sched.Job, loc *time.Location) string {
	at := job.Payload.TriggerAt.In(loc).Format("15:04")
	if job.Payload.Label == "" {
		return fmt.Sprintf("⏰ 提醒時間到了！（%s）", at)
	}
	return fmt.Sprintf("⏰ 提醒：%s\n%s 開始", job.Payload.Label, at)
}

func renderStatus(snap sched.Snapshot, ownerJobs int) string {
	return fmt.Sprintf("排程狀態\n待觸發提醒：%d（本聊天室 %d）\n輪詢間隔：%s\n寬限時間：%s",
		snap.Pending, ownerJobs, snap.PollInterval, snap.GraceWindow)
}

func renderHistory(entries []storage.DeliveryEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "還沒有通知紀錄"
	}
	var b strings.Builder
	b.WriteString("最近的通知：\n")
	for _, e := range entries {
		mark := "✅"
		if !e.OK {
			mark = "❌"
		}
		line := e.Text
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark, e.At.In(loc).Format("01/02 15:04"), line)
	}
	return strings.TrimRight(b.String(), "\n")
}
