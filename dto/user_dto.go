package dto

type RegisterUserDTO struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7,max=40"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7,max=40"`
}

type ChangeUsernameDTO struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required,min=7,max=40"`
	NewPassword string `json:"new_password" binding:"required,min=7,max=40"`
}
