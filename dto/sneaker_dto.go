package dto

// Sneaker payloads arrive as multipart form fields next to the optional
// image file, so these bind with form tags rather than json.

type CreateSneakerDTO struct {
	Name        string   `form:"name" binding:"required,max=50"`
	Description string   `form:"description" binding:"max=1000"`
	Category    string   `form:"category" binding:"required,oneof=running basketball lifestyle training"`
	Price       *float64 `form:"price" binding:"omitempty,gte=0"`
	Stock       *int     `form:"stock" binding:"omitempty,gte=0,lte=10000"`
	Featured    bool     `form:"featured"`
}

type UpdateSneakerDTO struct {
	Name        *string  `form:"name" binding:"omitempty,max=50"`
	Description *string  `form:"description" binding:"omitempty,max=1000"`
	Category    *string  `form:"category" binding:"omitempty,oneof=running basketball lifestyle training"`
	Price       *float64 `form:"price" binding:"omitempty,gte=0"`
	Stock       *int     `form:"stock" binding:"omitempty,gte=0,lte=10000"`
	Featured    *bool    `form:"featured"`
	DeleteImage bool     `form:"delete_image"`
}
