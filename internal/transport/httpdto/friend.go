package httpdto

type FriendRequestRequest struct {
	ToHex string `json:"to_hex" binding:"required"`
}

type NicknameRequest struct {
	FriendHex string `json:"friend_hex" binding:"required"`
	Nickname  string `json:"nickname"`
}

type RemoveFriendRequest struct {
	FriendHex string `json:"friend_hex" binding:"required"`
}
