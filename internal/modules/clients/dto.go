package clients

type ListQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type ClientRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	Phone       *string `json:"phone"`
	InstagramID *string `json:"instagram_id"`
}
