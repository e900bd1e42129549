package constants

const (
	GetGroupRanking = `
	SELECT member_key, display_name, points, current_level, messages_total
	FROM members
	WHERE group_id = $1 AND is_member = true
	ORDER BY points DESC, messages_total DESC
	LIMIT $2
	`

	GetGroupStats = `
	SELECT
		COUNT(*) FILTER (WHERE is_member)             AS active_members,
		COUNT(*)                                      AS total_members,
		COALESCE(SUM(points), 0)                      AS total_points,
		COALESCE(SUM(messages_total), 0)              AS total_messages
	FROM members
	WHERE group_id = $1
	`

	GetActiveMemberCount = `
	SELECT COUNT(*) FROM members WHERE group_id = $1 AND is_member = true
	`

	ListKnownGroupIDs = `
	SELECT DISTINCT group_id FROM members
	`
)
