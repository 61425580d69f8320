package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyTag                = "tag"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyConfig             = "config"
	KeyUserID             = "userId"
	KeyServiceID          = "serviceId"
	KeyProviderID         = "providerId"
	KeyBookingID          = "bookingId"
	KeyBookingIDs         = "bookingIds"
	KeyIntentID           = "paymentIntentId"
	KeyCheckoutStep       = "checkoutStep"
	KeyCart               = "cart"
	KeyCartItems          = "cartItems"
	KeyCartItemCount      = "cartItemCount"
	KeyCartQuantity       = "cartQuantity"
	KeyCacheKey           = "cacheKey"
	KeyQuote              = "quote"
	KeyAmount             = "amount"
	KeyCurrency           = "currency"
	KeyStatusCode         = "statusCode"
)
