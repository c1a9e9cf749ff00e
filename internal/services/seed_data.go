package services

import (
	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
)

type seedUser struct {
	username   string
	firstName  string
	lastName   string
	department string
	role       policy.Role
	archived   bool
}

var seedUsers = []seedUser{
	{"admin", "Admin", "User", "IT", policy.RoleAdmin, false},
	{"john.manager", "John", "Manager", "Sales", policy.RoleManager, false},
	{"jane.user", "Jane", "Smith", "Sales", policy.RoleUser, false},
	{"bob.viewer", "Bob", "Wilson", "Support", policy.RoleViewer, false},
	{"test.user", "Test", "User", "QA", policy.RoleUser, false},
	{"archived.user", "Archived", "User", "HR", policy.RoleViewer, true},
}

func (u seedUser) email() string {
	return u.username + "@demo.com"
}

var seedCustomers = []models.Customer{
	{Name: "Acme Corporation", Email: "contact@acme.com", Address: "123 Business Ave", City: "New York", Country: strPtr("USA"), Phone: strPtr("+1-555-0101")},
	{Name: "Tech Solutions Inc", Email: "info@techsolutions.com", Address: "456 Innovation Drive", City: "San Francisco", Country: strPtr("USA"), Phone: strPtr("+1-555-0202")},
	{Name: "Global Enterprises Ltd", Email: "sales@globalent.com", Address: "789 Commerce Street", City: "Chicago", Country: strPtr("USA"), Phone: strPtr("+1-555-0303")},
	{Name: "Digital Dynamics", Email: "hello@digitaldynamics.com", Address: "321 Tech Plaza", City: "Austin", Country: strPtr("USA"), Phone: strPtr("+1-555-0404")},
	{Name: "Innovation Partners", Email: "contact@innovpartners.com", Address: "654 Startup Lane", City: "Seattle", Country: strPtr("USA"), Phone: strPtr("+1-555-0505")},
}

var seedProducts = []struct {
	name, description, price string
}{
	{"Premium Software License", "Enterprise-grade software licensing solution", "299.99"},
	{"Cloud Storage Plan", "1TB cloud storage with advanced security", "49.99"},
	{"Project Management Tool", "Complete project management suite", "199.99"},
	{"Analytics Dashboard", "Real-time business analytics platform", "399.99"},
	{"Security Suite", "Comprehensive cybersecurity package", "599.99"},
	{"Communication Platform", "Unified business communication solution", "99.99"},
	{"CRM System", "Customer relationship management system", "249.99"},
	{"E-commerce Platform", "Complete online store solution", "449.99"},
	{"Mobile App Builder", "No-code mobile application builder", "179.99"},
	{"Database Management", "Enterprise database management tools", "349.99"},
	{"API Gateway", "Scalable API management solution", "199.99"},
	{"Monitoring Tools", "System performance monitoring suite", "149.99"},
	{"Backup Solution", "Automated backup and recovery system", "89.99"},
	{"Load Balancer", "High-availability load balancing service", "299.99"},
	{"Content Delivery Network", "Global content delivery platform", "79.99"},
	{"Machine Learning Platform", "AI/ML development and deployment tools", "699.99"},
	{"DevOps Pipeline", "Continuous integration/deployment solution", "399.99"},
	{"Video Conferencing", "HD video conferencing platform", "29.99"},
	{"Document Management", "Digital document workflow system", "129.99"},
	{"Training Platform", "Online learning management system", "199.99"},
}

// seedOrders reference customers and products by their position in the seed lists.
var seedOrders = []struct {
	customer int
	state    models.OrderState
	items    [][2]int // product index, quantity
}{
	{0, models.OrderStateCompleted, [][2]int{{0, 2}, {1, 5}}},
	{1, models.OrderStateCompleted, [][2]int{{4, 1}}},
	{2, models.OrderStatePending, [][2]int{{2, 1}, {6, 1}}},
	{0, models.OrderStateCompleted, [][2]int{{3, 1}, {15, 1}}},
	{3, models.OrderStateDraft, [][2]int{{8, 1}, {5, 1}}},
	{4, models.OrderStateCompleted, [][2]int{{6, 2}, {9, 1}}},
	{1, models.OrderStatePending, [][2]int{{10, 1}, {11, 1}}},
	{2, models.OrderStateCompleted, [][2]int{{12, 1}, {16, 1}}},
	{3, models.OrderStateDraft, [][2]int{{17, 2}}},
	{4, models.OrderStatePending, [][2]int{{18, 1}, {19, 1}}},
}

func seedPrice(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func strPtr(s string) *string {
	return &s
}
