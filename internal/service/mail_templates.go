package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown 将用户备注中的 Markdown 渲染为净化后的 HTML，供邮件模板嵌入
func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// reminderHabit 是每日提醒邮件里的单个习惯条目
type reminderHabit struct {
	Name      string
	Icon      string
	Completed bool
}

// summaryHabit 是每周报告邮件里的单个习惯条目
type summaryHabit struct {
	Name      string
	Icon      string
	Completed int
	Total     int
	Streak    int
	NotesHTML template.HTML
}

// achievementStats 是成就邮件底部的总量数据
type achievementStats struct {
	TotalHabits    int
	CompletedToday int
	CurrentStreak  int
}

const mailFooter = `
  {{if .SiteURL}}<p style="margin-top:24px">
    <a href="{{.SiteURL}}" style="background:#10b981;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none">打开习惯追踪器</a>
  </p>{{end}}`

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h1>欢迎加入习惯追踪器，{{.Name}}！</h1>
  <p>从今天起，把想养成的习惯记录下来，每天打卡一次。</p>
  <p>连续坚持 7 天、14 天、30 天都会解锁成就，我们会第一时间告诉你。</p>
  <p>现在就去创建你的第一个习惯吧。</p>` + mailFooter + `
</div>`))

var dailyReminderTemplate = template.Must(template.New("daily_reminder").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h1>🌅 {{.Name}}，新的一天开始了！</h1>
  {{if .Pending}}
  <p>今天还有 {{len .Pending}} 个习惯等着你：</p>
  <ul>
    {{range .Pending}}<li>{{.Icon}} {{.Name}}</li>{{end}}
  </ul>
  {{else}}
  <p>今天排期的习惯都完成了，漂亮！</p>
  {{end}}
  {{if .Completed}}
  <p>已完成：</p>
  <ul>
    {{range .Completed}}<li>{{.Icon}} {{.Name}} ✅</li>{{end}}
  </ul>
  {{end}}` + mailFooter + `
</div>`))

var weeklySummaryTemplate = template.Must(template.New("weekly_summary").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h1>📅 {{.Name}}，你的每周习惯报告来啦！</h1>
  {{if .Habits}}
  <table style="width:100%;border-collapse:collapse">
    <tr><th align="left">习惯</th><th>完成</th><th>连胜</th></tr>
    {{range .Habits}}
    <tr>
      <td>{{.Icon}} {{.Name}}</td>
      <td align="center">{{.Completed}}/{{.Total}}</td>
      <td align="center">{{.Streak}} 天</td>
    </tr>
    {{end}}
  </table>
  {{range .Habits}}{{if .NotesHTML}}
  <h3>{{.Icon}} {{.Name}} 的本周笔记</h3>
  <div>{{.NotesHTML}}</div>
  {{end}}{{end}}
  {{else}}
  <p>本周还没有打卡记录，下周试着从一个小习惯开始。</p>
  {{end}}` + mailFooter + `
</div>`))

var achievementTemplate = template.Must(template.New("achievement_alert").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h1>🔥 {{.Milestone}} 天连续完成！</h1>
  <p>{{.Name}}，你的习惯「{{.HabitIcon}} {{.HabitName}}」已经连续坚持 {{.Milestone}} 天，坚持就是胜利！</p>
  <p style="color:#666">
    当前共 {{.Stats.TotalHabits}} 个习惯，今日完成 {{.Stats.CompletedToday}} 个，本习惯连胜 {{.Stats.CurrentStreak}} 天。
  </p>` + mailFooter + `
</div>`))

func renderWelcomeEmail(name, siteURL string) (string, string, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		Name    string
		SiteURL string
	}{Name: name, SiteURL: siteURL})
	return "欢迎加入习惯追踪器！", buf.String(), err
}

func renderDailyReminderEmail(name, siteURL string, pending, completed []reminderHabit) (string, string, error) {
	var buf bytes.Buffer
	err := dailyReminderTemplate.Execute(&buf, struct {
		Name      string
		SiteURL   string
		Pending   []reminderHabit
		Completed []reminderHabit
	}{Name: name, SiteURL: siteURL, Pending: pending, Completed: completed})
	subject := fmt.Sprintf("🌅 %s，新的一天开始了！", name)
	return subject, buf.String(), err
}

func renderWeeklySummaryEmail(name, siteURL string, habits []summaryHabit) (string, string, error) {
	var buf bytes.Buffer
	err := weeklySummaryTemplate.Execute(&buf, struct {
		Name    string
		SiteURL string
		Habits  []summaryHabit
	}{Name: name, SiteURL: siteURL, Habits: habits})
	subject := fmt.Sprintf("📅 %s，你的每周习惯报告来啦！", name)
	return subject, buf.String(), err
}

func renderAchievementEmail(name, siteURL string, grant AchievementGrant, stats achievementStats) (string, string, error) {
	var buf bytes.Buffer
	err := achievementTemplate.Execute(&buf, struct {
		Name      string
		SiteURL   string
		HabitName string
		HabitIcon string
		Milestone int
		Stats     achievementStats
	}{Name: name, SiteURL: siteURL, HabitName: grant.HabitName, HabitIcon: grant.HabitIcon, Milestone: grant.Milestone, Stats: stats})
	subject := fmt.Sprintf("🎉 %s，你获得了新成就！", name)
	return subject, buf.String(), err
}
