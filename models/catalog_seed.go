package models

import (
	"github.com/gosimple/slug"
)

// AchievementSeed is the in-code form of a catalog row: same metadata, but
// with typed requirements instead of the persisted JSONB envelope.
type AchievementSeed struct {
	Name         string
	Description  string
	Icon         string
	Category     AchievementCategory
	Tier         AchievementTier
	Rarity       AchievementRarity
	XPReward     int64
	Requirements []Requirement
}

// SeedID derives the stable catalog primary key from the display name.
// Names of shipped achievements must never be renamed without keeping the ID.
func (s AchievementSeed) SeedID() string {
	return slug.Make(s.Name)
}

// AchievementSeeds is the shipped catalog, upserted into the catalog table at
// boot. Ordered list per achievement = all predicates must hold.
var AchievementSeeds = []AchievementSeed{
	// --- milestone ---
	{
		Name: "First Step", Description: "Log your first job application",
		Icon: "🎯", Category: CategoryMilestone, Tier: TierBronze, Rarity: RarityCommon, XPReward: 10,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 1}},
	},
	{
		Name: "Getting Started", Description: "Log 5 job applications",
		Icon: "📋", Category: CategoryMilestone, Tier: TierBronze, Rarity: RarityCommon, XPReward: 25,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 5}},
	},
	{
		Name: "Job Seeker", Description: "Log 10 job applications",
		Icon: "🔍", Category: CategoryMilestone, Tier: TierSilver, Rarity: RarityCommon, XPReward: 50,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 10}},
	},
	{
		Name: "Dedicated Hunter", Description: "Log 25 job applications",
		Icon: "🏹", Category: CategoryMilestone, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 100,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 25}},
	},
	{
		Name: "Halfway Hundred", Description: "Log 50 job applications",
		Icon: "⚡", Category: CategoryMilestone, Tier: TierGold, Rarity: RarityRare, XPReward: 200,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 50}},
	},
	{
		Name: "Century Club", Description: "Log 100 job applications",
		Icon: "💯", Category: CategoryMilestone, Tier: TierPlatinum, Rarity: RarityEpic, XPReward: 400,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 100}},
	},
	{
		Name: "Application Machine", Description: "Log 250 job applications",
		Icon: "🤖", Category: CategoryMilestone, Tier: TierDiamond, Rarity: RarityLegendary, XPReward: 750,
		Requirements: []Requirement{CountThreshold{Cmp: CmpGTE, Value: 250}},
	},

	// --- streak ---
	{
		Name: "Three in a Row", Description: "Apply on 3 consecutive days",
		Icon: "🔥", Category: CategoryStreak, Tier: TierBronze, Rarity: RarityCommon, XPReward: 25,
		Requirements: []Requirement{StreakThreshold{Cmp: CmpGTE, Value: 3}},
	},
	{
		Name: "Week Warrior", Description: "Apply on 7 consecutive days",
		Icon: "🗓️", Category: CategoryStreak, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 75,
		Requirements: []Requirement{StreakThreshold{Cmp: CmpGTE, Value: 7}},
	},
	{
		Name: "Fortnight Focus", Description: "Apply on 14 consecutive days",
		Icon: "🎖️", Category: CategoryStreak, Tier: TierGold, Rarity: RarityRare, XPReward: 150,
		Requirements: []Requirement{StreakThreshold{Cmp: CmpGTE, Value: 14}},
	},
	{
		Name: "Monthly Momentum", Description: "Apply on 30 consecutive days",
		Icon: "🚀", Category: CategoryStreak, Tier: TierPlatinum, Rarity: RarityEpic, XPReward: 300,
		Requirements: []Requirement{StreakThreshold{Cmp: CmpGTE, Value: 30}},
	},
	{
		Name: "Marathon Runner", Description: "Reach a 60-day streak at any point",
		Icon: "🏃", Category: CategoryStreak, Tier: TierDiamond, Rarity: RarityLegendary, XPReward: 600,
		Requirements: []Requirement{StreakThreshold{Longest: true, Cmp: CmpGTE, Value: 60}},
	},

	// --- goal ---
	{
		Name: "Goal Getter", Description: "Complete your first goal",
		Icon: "✅", Category: CategoryGoal, Tier: TierBronze, Rarity: RarityCommon, XPReward: 25,
		Requirements: []Requirement{GoalCompletionCount{Cmp: CmpGTE, Value: 1}},
	},
	{
		Name: "Weekly Winner", Description: "Complete a weekly goal",
		Icon: "📅", Category: CategoryGoal, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 50,
		Requirements: []Requirement{GoalCompletionCount{Period: GoalPeriodWeekly, Cmp: CmpGTE, Value: 1}},
	},
	{
		Name: "Monthly Master", Description: "Complete a monthly goal",
		Icon: "🗓️", Category: CategoryGoal, Tier: TierGold, Rarity: RarityRare, XPReward: 100,
		Requirements: []Requirement{GoalCompletionCount{Period: GoalPeriodMonthly, Cmp: CmpGTE, Value: 1}},
	},
	{
		Name: "Serial Achiever", Description: "Complete 5 goals",
		Icon: "🏆", Category: CategoryGoal, Tier: TierPlatinum, Rarity: RarityEpic, XPReward: 250,
		Requirements: []Requirement{GoalCompletionCount{Cmp: CmpGTE, Value: 5}},
	},

	// --- time ---
	{
		Name: "Early Bird", Description: "Submit an application before 9 AM",
		Icon: "🌅", Category: CategoryTime, Tier: TierBronze, Rarity: RarityUncommon, XPReward: 30,
		Requirements: []Requirement{TimeWindowFlag{Window: WindowEarlyBird}},
	},
	{
		Name: "Night Owl", Description: "Submit an application after 10 PM",
		Icon: "🦉", Category: CategoryTime, Tier: TierBronze, Rarity: RarityUncommon, XPReward: 30,
		Requirements: []Requirement{TimeWindowFlag{Window: WindowNightOwl}},
	},

	// --- quality ---
	{
		Name: "Resume Ready", Description: "Attach a resume to 10 applications",
		Icon: "📄", Category: CategoryQuality, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 75,
		Requirements: []Requirement{CategoryCount{Category: AttachmentResume, Cmp: CmpGTE, Value: 10}},
	},
	{
		Name: "Cover Story", Description: "Attach a cover letter to 5 applications",
		Icon: "✉️", Category: CategoryQuality, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 50,
		Requirements: []Requirement{CategoryCount{Category: AttachmentCoverLetter, Cmp: CmpGTE, Value: 5}},
	},
	{
		Name: "Portfolio Pro", Description: "Attach a portfolio to 3 applications",
		Icon: "🎨", Category: CategoryQuality, Tier: TierGold, Rarity: RarityRare, XPReward: 75,
		Requirements: []Requirement{CategoryCount{Category: AttachmentPortfolio, Cmp: CmpGTE, Value: 3}},
	},

	// --- special ---
	{
		Name: "Dream Chaser", Description: "Apply to 5 big-tech companies",
		Icon: "🌟", Category: CategorySpecial, Tier: TierGold, Rarity: RarityEpic, XPReward: 150,
		Requirements: []Requirement{SetMembershipCount{Set: CompanySetBigTech, Cmp: CmpGTE, Value: 5}},
	},
	{
		Name: "Interview Magnet", Description: "Reach the interview stage 5 times",
		Icon: "🧲", Category: CategorySpecial, Tier: TierGold, Rarity: RarityRare, XPReward: 125,
		Requirements: []Requirement{CountThreshold{Status: StatusInterview, Cmp: CmpGTE, Value: 5}},
	},
	{
		Name: "First Offer", Description: "Receive your first job offer",
		Icon: "🎉", Category: CategorySpecial, Tier: TierPlatinum, Rarity: RarityEpic, XPReward: 200,
		Requirements: []Requirement{CountThreshold{Status: StatusOffer, Cmp: CmpGTE, Value: 1}},
	},
	{
		Name: "Resilient", Description: "Keep going after 10 rejections",
		Icon: "💪", Category: CategorySpecial, Tier: TierSilver, Rarity: RarityUncommon, XPReward: 100,
		Requirements: []Requirement{CountThreshold{Status: StatusRejected, Cmp: CmpGTE, Value: 10}},
	},
	{
		Name: "Comeback Kid", Description: "Hold a 3-day streak after 5 rejections",
		Icon: "🔄", Category: CategorySpecial, Tier: TierGold, Rarity: RarityRare, XPReward: 150,
		Requirements: []Requirement{
			CountThreshold{Status: StatusRejected, Cmp: CmpGTE, Value: 5},
			StreakThreshold{Cmp: CmpGTE, Value: 3},
		},
	},
}

// CompanySetBigTech names the built-in big-tech company set.
const CompanySetBigTech = "big_tech"

// CompanySets maps a set name to its member companies, matched
// case-insensitively against ApplicationEvent.Company.
var CompanySets = map[string][]string{
	CompanySetBigTech: {
		"Google", "Alphabet", "Apple", "Amazon", "Meta", "Facebook",
		"Microsoft", "Netflix", "Nvidia",
	},
}
