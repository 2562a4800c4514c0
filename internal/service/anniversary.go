package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"golang.org/x/text/language"
)

type AnniversaryService struct {
	rooms         repository.RoomRepository
	profiles      repository.ProfileRepository
	notifier      Notifier
	defaultLocale string
}

func NewAnniversaryService(
	rooms repository.RoomRepository,
	profiles repository.ProfileRepository,
	notifier Notifier,
	defaultLocale string,
) *AnniversaryService {
	return &AnniversaryService{
		rooms:         rooms,
		profiles:      profiles,
		notifier:      notifier,
		defaultLocale: defaultLocale,
	}
}

type dueAnniversary struct {
	room  *model.Room
	kind  string
	years int
	next  time.Time
}

// Run notifies both members of every room whose anniversary is 7 days, 1 day
// or 0 days away from today's UTC date. Nothing is recorded; the push tag
// lets clients collapse repeats.
func (s *AnniversaryService) Run(ctx context.Context, now time.Time) (model.AnniversarySummary, error) {
	var summary model.AnniversarySummary

	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	rooms, err := s.rooms.WithAnniversary(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list rooms: %w", err)
	}
	summary.Rooms = len(rooms)

	var due []dueAnniversary
	var roomIDs []string
	for _, room := range rooms {
		anniv, err := datekey.Parse(*room.AnniversaryDate)
		if err != nil {
			slog.Error("invalid anniversary date", "room_id", room.ID, "value", *room.AnniversaryDate, "error", err)
			continue
		}
		kind, years, next, ok := ReminderFor(anniv, today)
		if !ok {
			continue
		}
		due = append(due, dueAnniversary{room: room, kind: kind, years: years, next: next})
		roomIDs = append(roomIDs, room.ID)
	}
	if len(due) == 0 {
		return summary, nil
	}

	members, err := s.rooms.MembersOf(ctx, roomIDs)
	if err != nil {
		return summary, fmt.Errorf("failed to load members: %w", err)
	}

	var userIDs []string
	for _, ids := range members {
		userIDs = append(userIDs, ids...)
	}
	locales, err := s.profiles.Locales(ctx, userIDs)
	if err != nil {
		slog.Warn("failed to load locales, using default", "error", err)
		locales = map[string]string{}
	}

	for _, a := range due {
		summary.Reminders++
		roomID := a.room.ID
		tag := fmt.Sprintf("anniversary-%s-%d-%s", roomID, a.next.Year(), a.kind)

		for _, userID := range members[roomID] {
			locale, ok := locales[userID]
			if !ok {
				locale = s.defaultLocale
			}
			title, body := anniversaryMessage(locale, s.defaultLocale, a.kind, a.years)

			_, err := s.notifier.Notify(ctx, userID, &roomID, model.NotifKindAnniversary, model.PushMessage{
				Title: title,
				Body:  body,
				URL:   "/",
				Tag:   tag,
			})
			if err != nil {
				slog.Error("failed to send anniversary reminder", "room_id", roomID, "user_id", userID, "error", err)
				summary.Failed++
				continue
			}
			summary.Sent++
		}
	}

	slog.Info("anniversary reminders finished",
		"rooms", summary.Rooms,
		"reminders", summary.Reminders,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	return summary, nil
}

// ReminderFor returns the reminder type due on today for an anniversary, the
// number of years completed on its next occurrence, and that occurrence.
// Both dates are calendar dates at midnight UTC.
func ReminderFor(anniv, today time.Time) (kind string, years int, next time.Time, ok bool) {
	next = occurrence(anniv, today.Year())
	if next.Before(today) {
		next = occurrence(anniv, today.Year()+1)
	}

	years = next.Year() - anniv.Year()
	if years < 1 {
		return "", years, next, false
	}

	switch int(next.Sub(today).Hours() / 24) {
	case 7:
		return model.ReminderSevenDays, years, next, true
	case 1:
		return model.ReminderOneDay, years, next, true
	case 0:
		return model.ReminderToday, years, next, true
	}
	return "", years, next, false
}

// occurrence places anniv's month and day in year. February 29 falls on
// February 28 in common years.
func occurrence(anniv time.Time, year int) time.Time {
	month, day := anniv.Month(), anniv.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

type anniversaryCopy struct {
	titles map[string]string
	bodies map[string]string
	year   string
	years  string
}

var anniversaryLocales = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
}

var anniversaryMatcher = language.NewMatcher(anniversaryLocales)

var anniversaryTemplates = []anniversaryCopy{
	{ // en
		titles: map[string]string{
			model.ReminderSevenDays: "Your anniversary is in one week",
			model.ReminderOneDay:    "Your anniversary is tomorrow",
			model.ReminderToday:     "Happy anniversary!",
		},
		bodies: map[string]string{
			model.ReminderSevenDays: "%s together next week. Time to plan something special!",
			model.ReminderOneDay:    "%s together tomorrow.",
			model.ReminderToday:     "%s together today.",
		},
		year:  "1 year",
		years: "%d years",
	},
	{ // de
		titles: map[string]string{
			model.ReminderSevenDays: "Euer Jahrestag ist in einer Woche",
			model.ReminderOneDay:    "Euer Jahrestag ist morgen",
			model.ReminderToday:     "Alles Gute zum Jahrestag!",
		},
		bodies: map[string]string{
			model.ReminderSevenDays: "Nächste Woche: %s zusammen. Zeit, etwas Besonderes zu planen!",
			model.ReminderOneDay:    "Morgen: %s zusammen.",
			model.ReminderToday:     "Heute: %s zusammen.",
		},
		year:  "1 Jahr",
		years: "%d Jahre",
	},
	{ // es
		titles: map[string]string{
			model.ReminderSevenDays: "Su aniversario es en una semana",
			model.ReminderOneDay:    "Su aniversario es mañana",
			model.ReminderToday:     "¡Feliz aniversario!",
		},
		bodies: map[string]string{
			model.ReminderSevenDays: "La próxima semana: %s juntos. ¡Planeen algo especial!",
			model.ReminderOneDay:    "Mañana: %s juntos.",
			model.ReminderToday:     "Hoy: %s juntos.",
		},
		year:  "1 año",
		years: "%d años",
	},
	{ // fr
		titles: map[string]string{
			model.ReminderSevenDays: "Votre anniversaire est dans une semaine",
			model.ReminderOneDay:    "Votre anniversaire est demain",
			model.ReminderToday:     "Joyeux anniversaire !",
		},
		bodies: map[string]string{
			model.ReminderSevenDays: "Dans une semaine : %s ensemble. Prévoyez quelque chose de spécial !",
			model.ReminderOneDay:    "Demain : %s ensemble.",
			model.ReminderToday:     "Aujourd'hui : %s ensemble.",
		},
		year:  "1 an",
		years: "%d ans",
	},
}

// anniversaryMessage renders the title and body for locale. Unsupported or
// malformed locales use fallback, then English.
func anniversaryMessage(locale, fallback, kind string, years int) (string, string) {
	index, ok := matchLocale(locale)
	if !ok {
		index, _ = matchLocale(fallback)
	}
	tmpl := anniversaryTemplates[index]

	phrase := tmpl.year
	if years != 1 {
		phrase = fmt.Sprintf(tmpl.years, years)
	}
	return tmpl.titles[kind], fmt.Sprintf(tmpl.bodies[kind], phrase)
}

func matchLocale(locale string) (int, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return 0, false
	}
	_, index, conf := anniversaryMatcher.Match(tag)
	if conf == language.No {
		return 0, false
	}
	return index, true
}
