package storage

import "soberly/internal/models"

// DefaultMilestones is the fixed nine-step catalogue from one day to one year.
func DefaultMilestones() []models.Milestone {
	return []models.Milestone{
		{Title: "First Step", Description: "One day sober!", TargetDays: 1},
		{Title: "Three-Day Spark", Description: "Three days sober!", TargetDays: 3},
		{Title: "One Week Champion", Description: "Seven days sober!", TargetDays: 7},
		{Title: "Two-Week Warrior", Description: "Fourteen days sober!", TargetDays: 14},
		{Title: "One Month Victory", Description: "Thirty days sober!", TargetDays: 30},
		{Title: "Sixty-Day Master", Description: "Sixty days sober!", TargetDays: 60},
		{Title: "Ninety-Day Hero", Description: "Ninety days sober!", TargetDays: 90},
		{Title: "Half-Year Harvest", Description: "180 days sober!", TargetDays: 180},
		{Title: "One-Year Legend", Description: "365 days sober!", TargetDays: 365},
	}
}

// DefaultQuotes seeds the home-screen quote rotation on first run.
func DefaultQuotes() []models.MotivationalQuote {
	return []models.MotivationalQuote{
		{Quote: "You made it through today. You can make it through tomorrow."},
		{Quote: "Change begins at the edge of your comfort zone."},
		{Quote: "A better today than yesterday, a better tomorrow than today."},
		{Quote: "As long as you don't give up, there is no failure."},
		{Quote: "Small progress is still progress."},
		{Quote: "You are stronger than you think."},
		{Quote: "A little every day, steadily."},
		{Quote: "Healthy habits build a healthy life."},
		{Quote: "Today's choices shape tomorrow's you."},
		{Quote: "Hard moments pass, and a stronger you remains."},
	}
}
