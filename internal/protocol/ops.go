package protocol

// Op identifies one operation in the wire contract.
type Op string

// Search and catalog (no authentication).
const (
	OpGetCitiesCatalog   Op = "GET_CITIES_CATALOG"
	OpGetCityMaps        Op = "GET_CITY_MAPS"
	OpSearchByCityName   Op = "SEARCH_BY_CITY_NAME"
	OpSearchByPoiName    Op = "SEARCH_BY_POI_NAME"
	OpSearchByCityAndPoi Op = "SEARCH_BY_CITY_AND_POI"
)

// Authentication.
const (
	OpLogin    Op = "LOGIN"
	OpLogout   Op = "LOGOUT"
	OpRegister Op = "REGISTER"
)

// Map editing and version approval.
const (
	OpSubmitMapVersion       Op = "SUBMIT_MAP_VERSION"
	OpListPendingMapVersions Op = "LIST_PENDING_MAP_VERSIONS"
	OpGetMapVersionDetails   Op = "GET_MAP_VERSION_DETAILS"
	OpApproveMapVersion      Op = "APPROVE_MAP_VERSION"
	OpRejectMapVersion       Op = "REJECT_MAP_VERSION"
)

// Pricing.
const (
	OpGetCurrentPrices           Op = "GET_CURRENT_PRICES"
	OpGetCityPrice               Op = "GET_CITY_PRICE"
	OpSubmitPricingRequest       Op = "SUBMIT_PRICING_REQUEST"
	OpListPendingPricingRequests Op = "LIST_PENDING_PRICING_REQUESTS"
	OpApprovePricingRequest      Op = "APPROVE_PRICING_REQUEST"
	OpRejectPricingRequest       Op = "REJECT_PRICING_REQUEST"
)

// Purchases and entitlements.
const (
	OpPurchaseOneTime      Op = "PURCHASE_ONE_TIME"
	OpPurchaseSubscription Op = "PURCHASE_SUBSCRIPTION"
	OpGetEntitlement       Op = "GET_ENTITLEMENT"
	OpCanDownload          Op = "CAN_DOWNLOAD"
	OpDownloadMapVersion   Op = "DOWNLOAD_MAP_VERSION"
	OpRecordViewEvent      Op = "RECORD_VIEW_EVENT"
	OpGetMyPurchases       Op = "GET_MY_PURCHASES"
)

// Customer profile and administration.
const (
	OpGetMyProfile              Op = "GET_MY_PROFILE"
	OpUpdateMyProfile           Op = "UPDATE_MY_PROFILE"
	OpAdminListCustomers        Op = "ADMIN_LIST_CUSTOMERS"
	OpAdminGetCustomerPurchases Op = "ADMIN_GET_CUSTOMER_PURCHASES"
)

// Notifications.
const (
	OpGetMyNotifications   Op = "GET_MY_NOTIFICATIONS"
	OpGetUnreadCount       Op = "GET_UNREAD_COUNT"
	OpMarkNotificationRead Op = "MARK_NOTIFICATION_READ"
	OpMarkAllRead          Op = "MARK_ALL_NOTIFICATIONS_READ"
)

// Support tickets.
const (
	OpCreateTicket      Op = "CREATE_TICKET"
	OpGetMyTickets      Op = "GET_MY_TICKETS"
	OpGetTicketDetails  Op = "GET_TICKET_DETAILS"
	OpEscalateTicket    Op = "ESCALATE_TICKET"
	OpCloseTicket       Op = "CLOSE_TICKET"
	OpAgentListPending  Op = "AGENT_LIST_PENDING"
	OpAgentListAssigned Op = "AGENT_LIST_ASSIGNED"
	OpAgentClaimTicket  Op = "AGENT_CLAIM_TICKET"
	OpAgentReply        Op = "AGENT_REPLY"
	OpAgentCloseTicket  Op = "AGENT_CLOSE_TICKET"
)

// Reporting.
const (
	OpGetActivityReport Op = "GET_ACTIVITY_REPORT"
)
