package constants

const (
	APP_CHECKOUT_SERVICE = "checkout-service"
	APP_MAIN_BOOKIFY     = "main bookify"
	AUDIENCE_USER        = "audience-user"
	ISSUER_USER_SERVICE  = "user-service"
)
