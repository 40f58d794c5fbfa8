package consts

const (
	PostHeatDirtyKey      = "post:heat:dirty"
	PostHeatRankKey       = "post:heat:rank"
	UserRecommendationKey = "user:recommendation:"
	JwtBlacklistKey       = "jwt:blacklist:"
	SpamFingerprintKey    = "moderation:spam:"
)

// PostHeatRankSize 热度榜保留条数
const PostHeatRankSize = 1000
