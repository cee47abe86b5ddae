package domain

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleCustomer = "customer"
)

type User struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
	Role     string `json:"role"`
}

type LoginUserDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CustomerLoginDTO struct {
	PlateNumber string `json:"plate_number" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	Subject  string `json:"subject"`
	Role     string `json:"role"`
	ExpireAt int64  `json:"expire_at"`
}
