package main

import (
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/session"
)

type demoDay struct {
	at       time.Duration // offset from midnight UTC
	duration int
	turns    []string // alternating user / assistant, starting with user
}

func (d demoDay) session(start time.Time) models.VentSession {
	return models.VentSession{
		ID:              session.SessionID(start),
		StartTime:       start.UnixMilli(),
		DurationMinutes: d.duration,
		Messages:        demoMessages(d.turns, start),
	}
}

func demoMessages(turns []string, start time.Time) []models.Message {
	out := make([]models.Message, 0, len(turns))
	for i, text := range turns {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		ts := start.Add(time.Duration(i) * time.Minute).UnixMilli()
		out = append(out, models.Message{Role: role, Content: text, Timestamp: &ts})
	}
	return out
}

func demoProfile(uid string) models.UserProfile {
	return models.UserProfile{UID: uid, DisplayName: "Demo User"}
}

func demoMentorEntry(uid, weekID string, at time.Time) models.MentorEntry {
	return models.MentorEntry{
		UID:       uid,
		WeekID:    weekID,
		Messages:  demoMessages(demoMentorTurns, at),
		Timestamp: at.UnixMilli(),
	}
}

// Six sessions, Monday through Saturday. Mentor unlocks at five.
var demoVentDays = []demoDay{
	{
		at:       9*time.Hour + 15*time.Minute,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"I woke up feeling really anxious about this presentation I have to give today. My stomach is in knots.",
			"It sounds like this presentation is weighing heavily on you. What about it makes you feel most anxious?",
			"I guess I'm worried people will think my ideas are stupid. I've been working on this for weeks but I still don't feel ready.",
			"That fear of judgment is really present. Tell me more about what you've prepared. What feels most solid to you?",
		},
	},
	{
		at:       14*time.Hour + 30*time.Minute,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"The presentation actually went okay. I was nervous but I got through it. Now I just feel drained.",
			"You made it through something that was really challenging for you. What was that experience like in the moment?",
			"Relieved, mostly. But also proud? I don't know, that feels weird to say.",
			"That sense of pride, what makes it feel weird to acknowledge?",
		},
	},
	{
		at:       18*time.Hour + 45*time.Minute,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"Had a really frustrating conversation with my manager today. They keep changing priorities and it's hard to keep up.",
			"That constant shifting must be exhausting. What happened in today's conversation specifically?",
			"They asked me to pivot on a project I've been working on for a month. I feel like I wasted all that time.",
			"That sense of wasted effort is really valid. How are you feeling about the work you put in?",
		},
	},
	{
		at:       12*time.Hour + 20*time.Minute,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"I had coffee with an old friend today. It was nice to catch up but I realized how much I've been isolating myself lately.",
			"That realization about isolation, what came up for you during that conversation?",
			"I guess I'm lonely? But also, I don't have the energy for much else. Work takes everything out of me.",
			"That exhaustion is real. How has work been affecting your capacity for other things?",
		},
	},
	{
		at:       20*time.Hour + 10*time.Minute,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"Made it through the week. Feeling a mix of relief and emptiness. Like, what was it all for?",
			"That question, what was it all for. What does that emptiness feel like?",
			"I just go through the motions. Get things done. But I don't feel like I'm moving toward anything meaningful.",
			"That sense of going through motions without purpose is heavy. What would make it feel more meaningful to you?",
		},
	},
	{
		at:       11 * time.Hour,
		duration: session.DefaultVentMinutes,
		turns: []string{
			"Trying to have a slow morning but I keep thinking about work. Can't seem to turn my brain off.",
			"Your mind is working even when you want it to rest. How does that feel in your body?",
			"Tense. My shoulders are up around my ears. I know I need to relax but I can't.",
			"That physical tension is real. What would help you feel like you could let go, even a little?",
		},
	},
}

var demoJournal = []string{
	"Monday morning anxiety is real. Big presentation today and I'm second-guessing everything. The data is solid, I know that logically, but the fear of judgment is loud. I've prepared. I can do this.",
	"Made it through the presentation. It went better than I expected, people were engaged and asked questions. There's relief, but also this weird feeling of pride. That's new.",
	"Frustrated with work today. Manager keeps changing priorities. Asked me to pivot on a project I've been working on for a month. I don't know how to push back without seeming difficult.",
	"Coffee with an old friend. Realized how much I've been isolating myself. I've just been working and going home. I'm lonely but also don't have energy for much else.",
	"End of the week. Relief mixed with emptiness. Maybe I need to figure out what I actually want, not just what I think I should be doing.",
	"Saturday morning and I can't turn my brain off. Replaying work conversations, worrying about Monday. My shoulders are tense. This isn't sustainable.",
}

var demoMentorTurns = []string{
	"This week felt like a lot. I had the presentation, work frustrations, and I realized how isolated I've become.",
	"This week held both accomplishment and some hard realizations. Let's sit with what stood out most.",
	"I guess the isolation thing hit hardest. I've been on autopilot, just work and home, nothing else.",
	"You're noticing a gap between how you're living and what might feel more nourishing. What would it look like to start small, maybe one thing this week that's just for you?",
	"I guess I've been treating rest as a reward instead of a requirement.",
	"You showed yourself this week that you can do hard things. What would make next week feel different?",
}
