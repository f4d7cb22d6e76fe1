package seed

// Fixture records reference each other by natural key (email, name,
// title within project), never by surrogate id. The seeder resolves
// those references through the registry as groups are loaded.

type UserFixture struct {
	Email string
	Name  string
	Role  string
}

type TenantFixture struct {
	Name string
	Plan string
}

type MemberFixture struct {
	Tenant string
	Email  string
	Role   string
}

type ClientFixture struct {
	Tenant   string
	Name     string
	Industry string
	Status   string
}

type ContactFixture struct {
	Client string
	Email  string
	Name   string
	Title  string
	Phone  string
}

type ProjectFixture struct {
	Client   string
	Name     string
	Status   string
	Budget   float64
	Manager  string
	StartsOn string
	EndsOn   string
}

type MilestoneFixture struct {
	Project string
	Name    string
	DueOn   string
	Status  string
}

type TaskFixture struct {
	Project       string
	Milestone     string
	Title         string
	Status        string
	Priority      string
	Assignee      string
	EstimateHours float64
}

type MeetingFixture struct {
	Project     string
	Title       string
	ScheduledAt string
	Organizer   string
	Summary     string
}

type RiskFixture struct {
	Project    string
	Title      string
	Severity   string
	Likelihood string
	Mitigation string
	Owner      string
}

type DocumentFixture struct {
	Project string
	Title   string
	Kind    string
	Author  string
	Body    string
}

type AccountFixture struct {
	Tenant  string
	Name    string
	Website string
	Segment string
}

type CRMContactFixture struct {
	Account string
	Email   string
	Name    string
	Title   string
}

type StageFixture struct {
	Tenant         string
	Name           string
	Position       int
	WinProbability float64
}

type OpportunityFixture struct {
	Account       string
	Stage         string
	Name          string
	Amount        float64
	Owner         string
	ExpectedClose string
}

type LabelFixture struct {
	Tenant string
	Name   string
	Color  string
}

type IssueFixture struct {
	Project  string
	Label    string
	Title    string
	Status   string
	Severity string
	Reporter string
	Assignee string
}

type LeadFixture struct {
	Tenant string
	Email  string
	Name   string
	Source string
	Status string
}

type BrandFixture struct {
	Tenant   string
	Name     string
	Voice    string
	Audience string
}

type CampaignFixture struct {
	Tenant  string
	Brand   string
	Name    string
	Channel string
	Status  string
	Budget  float64
}

type ContentFixture struct {
	Tenant   string
	Campaign string
	Title    string
	Format   string
	Status   string
	Author   string
}

// Fixtures is the full demo dataset, grouped by entity in seeding order.
type Fixtures struct {
	Users         []UserFixture
	Tenants       []TenantFixture
	Members       []MemberFixture
	Clients       []ClientFixture
	Contacts      []ContactFixture
	Projects      []ProjectFixture
	Milestones    []MilestoneFixture
	Tasks         []TaskFixture
	Meetings      []MeetingFixture
	Risks         []RiskFixture
	Documents     []DocumentFixture
	Accounts      []AccountFixture
	CRMContacts   []CRMContactFixture
	Stages        []StageFixture
	Opportunities []OpportunityFixture
	Labels        []LabelFixture
	Issues        []IssueFixture
	Leads         []LeadFixture
	Brands        []BrandFixture
	Campaigns     []CampaignFixture
	Content       []ContentFixture
}

// DefaultFixtures returns the built-in Nexora demo dataset.
func DefaultFixtures() Fixtures {
	return Fixtures{
		Users: []UserFixture{
			{Email: "maya.singh@nexora.dev", Name: "Maya Singh", Role: "admin"},
			{Email: "tom.aldrin@nexora.dev", Name: "Tom Aldrin", Role: "member"},
			{Email: "ines.ferrer@nexora.dev", Name: "Ines Ferrer", Role: "member"},
			{Email: "kenji.mori@nexora.dev", Name: "Kenji Mori", Role: "member"},
			{Email: "lea.dubois@nexora.dev", Name: "Lea Dubois", Role: "member"},
			{Email: "sam.okafor@nexora.dev", Name: "Sam Okafor", Role: "viewer"},
		},
		Tenants: []TenantFixture{
			{Name: "nexora-demo", Plan: "business"},
			{Name: "nexora-sandbox", Plan: "trial"},
		},
		Members: []MemberFixture{
			{Tenant: "nexora-demo", Email: "maya.singh@nexora.dev", Role: "owner"},
			{Tenant: "nexora-demo", Email: "tom.aldrin@nexora.dev", Role: "member"},
			{Tenant: "nexora-demo", Email: "ines.ferrer@nexora.dev", Role: "member"},
			{Tenant: "nexora-demo", Email: "kenji.mori@nexora.dev", Role: "member"},
			{Tenant: "nexora-demo", Email: "lea.dubois@nexora.dev", Role: "member"},
			{Tenant: "nexora-sandbox", Email: "maya.singh@nexora.dev", Role: "owner"},
			{Tenant: "nexora-sandbox", Email: "sam.okafor@nexora.dev", Role: "viewer"},
		},
		Clients: []ClientFixture{
			{Tenant: "nexora-demo", Name: "Brightline Retail", Industry: "retail", Status: "active"},
			{Tenant: "nexora-demo", Name: "Harbor & Finch", Industry: "finance", Status: "active"},
			{Tenant: "nexora-demo", Name: "Veldt Logistics", Industry: "logistics", Status: "paused"},
		},
		Contacts: []ContactFixture{
			{Client: "Brightline Retail", Email: "claire.webb@brightline.example", Name: "Claire Webb", Title: "VP Operations", Phone: "+1-555-0141"},
			{Client: "Brightline Retail", Email: "raj.patel@brightline.example", Name: "Raj Patel", Title: "IT Director", Phone: "+1-555-0178"},
			{Client: "Harbor & Finch", Email: "d.morrow@harborfinch.example", Name: "Diane Morrow", Title: "CFO", Phone: "+1-555-0192"},
			{Client: "Harbor & Finch", Email: "p.lindqvist@harborfinch.example", Name: "Per Lindqvist", Title: "Controller", Phone: "+1-555-0113"},
			{Client: "Veldt Logistics", Email: "a.nkosi@veldt.example", Name: "Amara Nkosi", Title: "Fleet Manager", Phone: "+1-555-0167"},
		},
		Projects: []ProjectFixture{
			{Client: "Brightline Retail", Name: "Storefront Relaunch", Status: "active", Budget: 180000, Manager: "maya.singh@nexora.dev", StartsOn: "2026-01-12", EndsOn: "2026-09-30"},
			{Client: "Harbor & Finch", Name: "Ledger Migration", Status: "active", Budget: 95000, Manager: "tom.aldrin@nexora.dev", StartsOn: "2026-03-02", EndsOn: "2026-08-14"},
			{Client: "Veldt Logistics", Name: "Route Telemetry", Status: "on_hold", Budget: 64000, Manager: "ines.ferrer@nexora.dev", StartsOn: "2026-02-16", EndsOn: "2026-11-20"},
		},
		Milestones: []MilestoneFixture{
			{Project: "Storefront Relaunch", Name: "Design freeze", DueOn: "2026-04-01", Status: "done"},
			{Project: "Storefront Relaunch", Name: "Checkout beta", DueOn: "2026-07-15", Status: "in_progress"},
			{Project: "Storefront Relaunch", Name: "Launch", DueOn: "2026-09-25", Status: "pending"},
			{Project: "Ledger Migration", Name: "Schema cutover", DueOn: "2026-06-01", Status: "done"},
			{Project: "Ledger Migration", Name: "Parallel run", DueOn: "2026-07-20", Status: "in_progress"},
			{Project: "Route Telemetry", Name: "Pilot fleet", DueOn: "2026-05-30", Status: "pending"},
		},
		Tasks: []TaskFixture{
			{Project: "Storefront Relaunch", Milestone: "Checkout beta", Title: "Integrate payment provider", Status: "in_progress", Priority: "high", Assignee: "kenji.mori@nexora.dev", EstimateHours: 40},
			{Project: "Storefront Relaunch", Milestone: "Checkout beta", Title: "Cart abandonment emails", Status: "todo", Priority: "medium", Assignee: "lea.dubois@nexora.dev", EstimateHours: 16},
			{Project: "Storefront Relaunch", Milestone: "Launch", Title: "Load test checkout", Status: "todo", Priority: "high", Assignee: "kenji.mori@nexora.dev", EstimateHours: 24},
			{Project: "Storefront Relaunch", Title: "Accessibility audit", Status: "todo", Priority: "low", EstimateHours: 12},
			{Project: "Ledger Migration", Milestone: "Parallel run", Title: "Reconciliation report", Status: "in_progress", Priority: "high", Assignee: "tom.aldrin@nexora.dev", EstimateHours: 32},
			{Project: "Ledger Migration", Milestone: "Parallel run", Title: "Backfill 2024 journals", Status: "done", Priority: "medium", Assignee: "ines.ferrer@nexora.dev", EstimateHours: 20},
			{Project: "Ledger Migration", Title: "Archive legacy exports", Status: "todo", Priority: "low", EstimateHours: 8},
			{Project: "Route Telemetry", Milestone: "Pilot fleet", Title: "Install tracker units", Status: "blocked", Priority: "high", Assignee: "ines.ferrer@nexora.dev", EstimateHours: 48},
			{Project: "Route Telemetry", Milestone: "Pilot fleet", Title: "Driver app onboarding", Status: "todo", Priority: "medium", EstimateHours: 24},
			{Project: "Route Telemetry", Title: "Geofence alert rules", Status: "todo", Priority: "medium", Assignee: "kenji.mori@nexora.dev", EstimateHours: 16},
		},
		Meetings: []MeetingFixture{
			{Project: "Storefront Relaunch", Title: "Weekly standup", ScheduledAt: "2026-08-31 09:30:00", Organizer: "maya.singh@nexora.dev", Summary: "Checkout beta burndown review."},
			{Project: "Storefront Relaunch", Title: "Launch readiness review", ScheduledAt: "2026-09-18 14:00:00", Organizer: "maya.singh@nexora.dev"},
			{Project: "Ledger Migration", Title: "Parallel run checkpoint", ScheduledAt: "2026-09-02 11:00:00", Organizer: "tom.aldrin@nexora.dev", Summary: "Variance under 0.1 percent for two weeks."},
			{Project: "Route Telemetry", Title: "Restart planning", ScheduledAt: "2026-09-10 10:00:00", Organizer: "ines.ferrer@nexora.dev"},
		},
		Risks: []RiskFixture{
			{Project: "Storefront Relaunch", Title: "Payment provider API deprecation", Severity: "HIGH", Likelihood: "likely", Mitigation: "Pin to v2 endpoints, track sunset calendar.", Owner: "kenji.mori@nexora.dev"},
			{Project: "Storefront Relaunch", Title: "Holiday traffic spike", Severity: "MEDIUM", Likelihood: "possible", Mitigation: "Autoscale plus CDN cache tuning before launch.", Owner: "maya.singh@nexora.dev"},
			{Project: "Ledger Migration", Title: "Reconciliation drift", Severity: "CRITICAL", Likelihood: "possible", Mitigation: "Daily variance report during parallel run.", Owner: "tom.aldrin@nexora.dev"},
			{Project: "Route Telemetry", Title: "Hardware supplier delay", Severity: "HIGH", Likelihood: "likely", Mitigation: "Second-source tracker units.", Owner: "ines.ferrer@nexora.dev"},
		},
		Documents: []DocumentFixture{
			{Project: "Storefront Relaunch", Title: "Checkout architecture", Kind: "design", Author: "kenji.mori@nexora.dev", Body: "Payment flow, tokenization, and retry semantics."},
			{Project: "Storefront Relaunch", Title: "Launch runbook", Kind: "runbook", Author: "maya.singh@nexora.dev", Body: "Cutover steps, rollback triggers, on-call rota."},
			{Project: "Ledger Migration", Title: "Mapping spec", Kind: "spec", Author: "tom.aldrin@nexora.dev", Body: "Legacy account codes to new chart of accounts."},
			{Project: "Route Telemetry", Title: "Pilot scope memo", Kind: "note", Author: "ines.ferrer@nexora.dev", Body: "Twelve vehicles, two depots, six-week window."},
		},
		Accounts: []AccountFixture{
			{Tenant: "nexora-demo", Name: "Northwind Foods", Website: "https://northwind.example", Segment: "mid-market"},
			{Tenant: "nexora-demo", Name: "Atlas Manufacturing", Website: "https://atlasmfg.example", Segment: "enterprise"},
			{Tenant: "nexora-demo", Name: "Cobalt Studios", Website: "https://cobalt.example", Segment: "smb"},
		},
		CRMContacts: []CRMContactFixture{
			{Account: "Northwind Foods", Email: "j.olsen@northwind.example", Name: "Jonas Olsen", Title: "Head of Procurement"},
			{Account: "Atlas Manufacturing", Email: "m.reyes@atlasmfg.example", Name: "Marta Reyes", Title: "COO"},
			{Account: "Atlas Manufacturing", Email: "b.chu@atlasmfg.example", Name: "Ben Chu", Title: "Plant IT Lead"},
			{Account: "Cobalt Studios", Email: "f.meier@cobalt.example", Name: "Franka Meier", Title: "Founder"},
		},
		Stages: []StageFixture{
			{Tenant: "nexora-demo", Name: "Lead", Position: 1, WinProbability: 0.05},
			{Tenant: "nexora-demo", Name: "Qualified", Position: 2, WinProbability: 0.2},
			{Tenant: "nexora-demo", Name: "Proposal", Position: 3, WinProbability: 0.45},
			{Tenant: "nexora-demo", Name: "Negotiation", Position: 4, WinProbability: 0.7},
			{Tenant: "nexora-demo", Name: "Closed Won", Position: 5, WinProbability: 1},
			{Tenant: "nexora-demo", Name: "Closed Lost", Position: 6, WinProbability: 0},
		},
		Opportunities: []OpportunityFixture{
			{Account: "Northwind Foods", Stage: "Proposal", Name: "Supplier portal rollout", Amount: 48000, Owner: "lea.dubois@nexora.dev", ExpectedClose: "2026-10-15"},
			{Account: "Atlas Manufacturing", Stage: "Negotiation", Name: "Shop floor analytics", Amount: 220000, Owner: "maya.singh@nexora.dev", ExpectedClose: "2026-09-30"},
			{Account: "Atlas Manufacturing", Stage: "Qualified", Name: "Maintenance scheduling", Amount: 75000, Owner: "lea.dubois@nexora.dev", ExpectedClose: "2026-12-01"},
			{Account: "Cobalt Studios", Stage: "Lead", Name: "Asset pipeline audit", Amount: 18000, ExpectedClose: "2026-11-10"},
		},
		Labels: []LabelFixture{
			{Tenant: "nexora-demo", Name: "bug", Color: "#d73a4a"},
			{Tenant: "nexora-demo", Name: "performance", Color: "#fbca04"},
			{Tenant: "nexora-demo", Name: "security", Color: "#b60205"},
			{Tenant: "nexora-demo", Name: "ux", Color: "#0e8a16"},
		},
		Issues: []IssueFixture{
			{Project: "Storefront Relaunch", Label: "bug", Title: "Cart total rounds incorrectly for multi-currency", Status: "open", Severity: "HIGH", Reporter: "lea.dubois@nexora.dev", Assignee: "kenji.mori@nexora.dev"},
			{Project: "Storefront Relaunch", Label: "performance", Title: "Product grid slow over 500 SKUs", Status: "open", Severity: "MEDIUM", Reporter: "maya.singh@nexora.dev"},
			{Project: "Storefront Relaunch", Label: "ux", Title: "Checkout stepper loses state on back", Status: "closed", Severity: "LOW", Reporter: "lea.dubois@nexora.dev", Assignee: "kenji.mori@nexora.dev"},
			{Project: "Ledger Migration", Label: "security", Title: "Export bucket missing retention policy", Status: "open", Severity: "CRITICAL", Reporter: "tom.aldrin@nexora.dev", Assignee: "tom.aldrin@nexora.dev"},
			{Project: "Route Telemetry", Title: "Tracker firmware version drift", Status: "open", Severity: "MEDIUM", Reporter: "ines.ferrer@nexora.dev"},
		},
		Leads: []LeadFixture{
			{Tenant: "nexora-demo", Email: "hello@ferngrove.example", Name: "Ferngrove Nurseries", Source: "webform", Status: "new"},
			{Tenant: "nexora-demo", Email: "ops@quartzrail.example", Name: "Quartz Rail", Source: "referral", Status: "contacted"},
			{Tenant: "nexora-demo", Email: "it@bluehollow.example", Name: "Blue Hollow Clinics", Source: "conference", Status: "qualified"},
			{Tenant: "nexora-demo", Email: "info@marrowpress.example", Name: "Marrow Press", Source: "webform", Status: "new"},
			{Tenant: "nexora-sandbox", Email: "test@sandbox.example", Name: "Sandbox Lead", Source: "manual", Status: "new"},
		},
		Brands: []BrandFixture{
			{Tenant: "nexora-demo", Name: "Nexora Core", Voice: "direct, technical, no hype", Audience: "operations and delivery leads"},
			{Tenant: "nexora-demo", Name: "Nexora Partners", Voice: "warm, consultative", Audience: "agency owners"},
		},
		Campaigns: []CampaignFixture{
			{Tenant: "nexora-demo", Brand: "Nexora Core", Name: "Q3 AI monitoring launch", Channel: "email", Status: "running", Budget: 12000},
			{Tenant: "nexora-demo", Brand: "Nexora Core", Name: "Anomaly detection webinar", Channel: "webinar", Status: "scheduled", Budget: 4000},
			{Tenant: "nexora-demo", Brand: "Nexora Partners", Name: "Partner onboarding drip", Channel: "email", Status: "draft", Budget: 2500},
		},
		Content: []ContentFixture{
			{Tenant: "nexora-demo", Campaign: "Q3 AI monitoring launch", Title: "Why cost bands beat budget alerts", Format: "blog", Status: "published", Author: "lea.dubois@nexora.dev"},
			{Tenant: "nexora-demo", Campaign: "Q3 AI monitoring launch", Title: "Launch announcement email", Format: "email", Status: "published", Author: "maya.singh@nexora.dev"},
			{Tenant: "nexora-demo", Campaign: "Anomaly detection webinar", Title: "Webinar landing page", Format: "landing", Status: "draft", Author: "lea.dubois@nexora.dev"},
			{Tenant: "nexora-demo", Title: "Customer story: Atlas Manufacturing", Format: "case-study", Status: "draft", Author: "sam.okafor@nexora.dev"},
		},
	}
}
