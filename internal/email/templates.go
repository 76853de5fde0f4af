package email

import (
	"bytes"
	"fmt"
	"html/template"

	"habitflow/internal/models"
)

var (
	goalTmpl = template.Must(template.New("goal").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #fff3cd;">
  <h2 style="color: #856404;">🎯 Goal Reminder</h2>
  <p>Your goal "<strong>{{.Title}}</strong>" is due soon!</p>
  <p>Due date: {{.Due}}</p>
  <p>Keep up the great work! 💪</p>
</div>`))

	habitTmpl = template.Must(template.New("habit").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #d1ecf1;">
  <h2 style="color: #0c5460;">🔔 Habit Reminder</h2>
  <p>Don't forget to complete your daily habits!</p>
  <p>Maintain your {{.Streak}}-day streak! 🔥</p>
</div>`))

	soulFuelTmpl = template.Must(template.New("soulfuel").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f3e8ff;">
  <h2 style="color: #6b21a8;">💫 Your Daily SoulFuel</h2>
  {{range .}}<blockquote style="margin: 16px 0;">
    <p>{{.Message}}</p>
    <p><em>{{.Author}}</em></p>
  </blockquote>
  {{end}}
</div>`))

	milestoneTmpl = template.Must(template.New("milestone").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #dcfce7;">
  <h2 style="color: #166534;">🏆 {{.Days}}-day streak!</h2>
  <p>You have completed "<strong>{{.Habit}}</strong>" {{.Days}} days in a row.</p>
</div>`))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// Templates are fixed at compile time; the plain-text part still goes out.
		return ""
	}
	return buf.String()
}

func GoalReminder(to string, g models.Goal) Message {
	due := "soon"
	if g.TargetDate != nil {
		due = g.TargetDate.String()
	}
	return Message{
		To:      to,
		Subject: "Goal Reminder: " + g.Title,
		Text:    fmt.Sprintf("Your goal %q is due soon! Don't forget to complete it.", g.Title),
		HTML:    render(goalTmpl, struct{ Title, Due string }{g.Title, due}),
	}
}

func HabitReminder(to string, streak int) Message {
	return Message{
		To:      to,
		Subject: "Daily Habit Reminder",
		Text:    "Remember to complete your habits today!",
		HTML:    render(habitTmpl, struct{ Streak int }{streak}),
	}
}

func SoulFuel(to string, msgs []models.Message) Message {
	var text bytes.Buffer
	for _, m := range msgs {
		fmt.Fprintf(&text, "%s\n- %s\n\n", m.Message, m.Author)
	}
	return Message{
		To:      to,
		Subject: "Your Daily SoulFuel 💫",
		Text:    text.String(),
		HTML:    render(soulFuelTmpl, msgs),
	}
}

func StreakMilestone(to, habit string, days int) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%d-day streak on %s", days, habit),
		Text:    fmt.Sprintf("You have completed %q %d days in a row. Keep going!", habit, days),
		HTML: render(milestoneTmpl, struct {
			Habit string
			Days  int
		}{habit, days}),
	}
}
