package enum

// ── State machines (CHECK constrained in DB) ──

const (
	TableStatusEmpty           = "EMPTY"
	TableStatusOccupied        = "OCCUPIED"
	TableStatusAwaitingPayment = "AWAITING_PAYMENT"
)

const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
)

// ── Labels (CHECK constrained in DB) ──

const (
	MenuCategoryMain    = "MAIN"
	MenuCategorySnack   = "SNACK"
	MenuCategoryDessert = "DESSERT"
	MenuCategoryDrink   = "DRINK"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodTransfer = "TRANSFER"
)
