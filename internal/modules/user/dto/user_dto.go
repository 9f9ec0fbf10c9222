package dto

// CreateTeacherInput is the admin form for teacher accounts.
type CreateTeacherInput struct {
	FullName string `json:"fullname" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// AdminUpdateUserInput changes only the fields that are set. Email can be
// changed for teachers only.
type AdminUpdateUserInput struct {
	FullName *string `json:"fullname" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

type ListUsersQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=admin teacher student"`
}
