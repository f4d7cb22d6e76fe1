package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/internal/logger"
)

// StepResult reports what one fixture group did to the database.
type StepResult struct {
	Entity   string
	Inserted int
	Updated  int
}

// registry holds the name→id maps built while seeding. Later groups
// resolve their references through it; a miss aborts the whole run.
type registry struct {
	ids map[string]map[string]int64
}

func newRegistry() *registry {
	return &registry{ids: make(map[string]map[string]int64)}
}

func (r *registry) register(kind, key string, id int64) {
	m, ok := r.ids[kind]
	if !ok {
		m = make(map[string]int64)
		r.ids[kind] = m
	}
	m[key] = id
}

func (r *registry) resolve(kind, key string) (int64, error) {
	if id, ok := r.ids[kind][key]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unresolved %s reference %q", kind, key)
}

// resolveOptional returns a NULL-able id for references that may be empty.
func (r *registry) resolveOptional(kind, key string) (any, error) {
	if key == "" {
		return nil, nil
	}
	id, err := r.resolve(kind, key)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// upsertSpec describes one natural-key upsert: the row is matched on
// keyCols, updated in place when found, inserted otherwise. insCols are
// written only on insert (surrogate public ids).
type upsertSpec struct {
	table   string
	keyCols []string
	keyVals []any
	setCols []string
	setVals []any
	insCols []string
	insVals []any
}

func (s *Store) upsert(ctx context.Context, spec upsertSpec) (int64, bool, error) {
	where := make([]string, len(spec.keyCols))
	for i, col := range spec.keyCols {
		where[i] = col + " = ?"
	}

	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s", spec.table, strings.Join(where, " AND "))
	err := s.QueryRowContext(ctx, query, spec.keyVals...).Scan(&id)

	switch {
	case err == nil:
		if len(spec.setCols) == 0 {
			return id, false, nil
		}
		sets := make([]string, len(spec.setCols))
		for i, col := range spec.setCols {
			sets[i] = col + " = ?"
		}
		args := append(append([]any{}, spec.setVals...), id)
		update := fmt.Sprintf("UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			spec.table, strings.Join(sets, ", "))
		if !tableHasUpdatedAt(spec.table) {
			update = fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", spec.table, strings.Join(sets, ", "))
		}
		if _, err := s.ExecContext(ctx, update, args...); err != nil {
			return 0, false, fmt.Errorf("update %s: %w", spec.table, err)
		}
		return id, false, nil

	case errors.Is(err, sql.ErrNoRows):
		cols := append(append([]string{}, spec.keyCols...), spec.setCols...)
		cols = append(cols, spec.insCols...)
		vals := append(append([]any{}, spec.keyVals...), spec.setVals...)
		vals = append(vals, spec.insVals...)

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			spec.table, strings.Join(cols, ", "), placeholders)
		res, err := s.ExecContext(ctx, insert, vals...)
		if err != nil {
			return 0, false, fmt.Errorf("insert %s: %w", spec.table, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("insert %s: %w", spec.table, err)
		}
		return newID, true, nil

	default:
		return 0, false, fmt.Errorf("lookup %s: %w", spec.table, err)
	}
}

func tableHasUpdatedAt(table string) bool {
	switch table {
	case "tenant_members", "issue_labels":
		return false
	}
	return true
}

// Seeder loads the demo fixture graph into the store in dependency order.
type Seeder struct {
	store    *Store
	fixtures Fixtures
	reg      *registry
	verbose  bool
}

// NewSeeder creates a seeder over the given store using the built-in
// demo fixture set.
func NewSeeder(store *Store, verbose bool) *Seeder {
	return &Seeder{
		store:    store,
		fixtures: DefaultFixtures(),
		reg:      newRegistry(),
		verbose:  verbose,
	}
}

// NewSeederWithFixtures creates a seeder over a custom fixture set.
func NewSeederWithFixtures(store *Store, fixtures Fixtures, verbose bool) *Seeder {
	return &Seeder{
		store:    store,
		fixtures: fixtures,
		reg:      newRegistry(),
		verbose:  verbose,
	}
}

// Run seeds every fixture group strictly in order. Any unresolved
// reference aborts the run with the offending natural key in the error.
func (s *Seeder) Run(ctx context.Context) ([]StepResult, error) {
	steps := []struct {
		entity string
		fn     func(context.Context) (StepResult, error)
	}{
		{"users", s.seedUsers},
		{"tenants", s.seedTenants},
		{"tenant members", s.seedMembers},
		{"clients", s.seedClients},
		{"contacts", s.seedContacts},
		{"projects", s.seedProjects},
		{"milestones", s.seedMilestones},
		{"tasks", s.seedTasks},
		{"meetings", s.seedMeetings},
		{"risks", s.seedRisks},
		{"documents", s.seedDocuments},
		{"crm accounts", s.seedAccounts},
		{"crm contacts", s.seedCRMContacts},
		{"pipeline stages", s.seedStages},
		{"opportunities", s.seedOpportunities},
		{"issue labels", s.seedLabels},
		{"issues", s.seedIssues},
		{"leads", s.seedLeads},
		{"brand profiles", s.seedBrands},
		{"campaigns", s.seedCampaigns},
		{"content pieces", s.seedContent},
	}

	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		res, err := step.fn(ctx)
		if err != nil {
			return results, fmt.Errorf("seed %s: %w", step.entity, err)
		}
		if s.verbose {
			logger.Info("seeded fixture group",
				"entity", res.Entity, "inserted", res.Inserted, "updated", res.Updated)
		}
		results = append(results, res)
	}

	return results, nil
}

func (s *Seeder) seedUsers(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "users"}
	for _, u := range s.fixtures.Users {
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "users",
			keyCols: []string{"email"},
			keyVals: []any{u.Email},
			setCols: []string{"name", "role"},
			setVals: []any{u.Name, u.Role},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("user %q: %w", u.Email, err)
		}
		s.reg.register("user", u.Email, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedTenants(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "tenants"}
	for _, t := range s.fixtures.Tenants {
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "tenants",
			keyCols: []string{"name"},
			keyVals: []any{t.Name},
			setCols: []string{"plan"},
			setVals: []any{t.Plan},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("tenant %q: %w", t.Name, err)
		}
		s.reg.register("tenant", t.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedMembers(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "tenant members"}
	for _, m := range s.fixtures.Members {
		tenantID, err := s.reg.resolve("tenant", m.Tenant)
		if err != nil {
			return res, err
		}
		userID, err := s.reg.resolve("user", m.Email)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "tenant_members",
			keyCols: []string{"tenant_id", "user_id"},
			keyVals: []any{tenantID, userID},
			setCols: []string{"role"},
			setVals: []any{m.Role},
		})
		if err != nil {
			return res, fmt.Errorf("membership %s/%s: %w", m.Tenant, m.Email, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedClients(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "clients"}
	for _, c := range s.fixtures.Clients {
		tenantID, err := s.reg.resolve("tenant", c.Tenant)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "clients",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, c.Name},
			setCols: []string{"industry", "status"},
			setVals: []any{c.Industry, c.Status},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("client %q: %w", c.Name, err)
		}
		s.reg.register("client", c.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedContacts(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "contacts"}
	for _, c := range s.fixtures.Contacts {
		clientID, err := s.reg.resolve("client", c.Client)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "contacts",
			keyCols: []string{"client_id", "email"},
			keyVals: []any{clientID, c.Email},
			setCols: []string{"name", "title", "phone"},
			setVals: []any{c.Name, c.Title, c.Phone},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("contact %q: %w", c.Email, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedProjects(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "projects"}
	for _, p := range s.fixtures.Projects {
		clientID, err := s.reg.resolve("client", p.Client)
		if err != nil {
			return res, err
		}
		managerID, err := s.reg.resolveOptional("user", p.Manager)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "projects",
			keyCols: []string{"client_id", "name"},
			keyVals: []any{clientID, p.Name},
			setCols: []string{"status", "budget", "manager_id", "starts_on", "ends_on"},
			setVals: []any{p.Status, p.Budget, managerID, p.StartsOn, p.EndsOn},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("project %q: %w", p.Name, err)
		}
		s.reg.register("project", p.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedMilestones(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "milestones"}
	for _, m := range s.fixtures.Milestones {
		projectID, err := s.reg.resolve("project", m.Project)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "milestones",
			keyCols: []string{"project_id", "name"},
			keyVals: []any{projectID, m.Name},
			setCols: []string{"due_on", "status"},
			setVals: []any{m.DueOn, m.Status},
		})
		if err != nil {
			return res, fmt.Errorf("milestone %q: %w", m.Name, err)
		}
		s.reg.register("milestone", m.Project+"/"+m.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedTasks(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "tasks"}
	for _, t := range s.fixtures.Tasks {
		projectID, err := s.reg.resolve("project", t.Project)
		if err != nil {
			return res, err
		}
		var milestoneID any
		if t.Milestone != "" {
			id, err := s.reg.resolve("milestone", t.Project+"/"+t.Milestone)
			if err != nil {
				return res, err
			}
			milestoneID = id
		}
		assigneeID, err := s.reg.resolveOptional("user", t.Assignee)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "tasks",
			keyCols: []string{"project_id", "title"},
			keyVals: []any{projectID, t.Title},
			setCols: []string{"milestone_id", "status", "priority", "assignee_id", "estimate_hours"},
			setVals: []any{milestoneID, t.Status, t.Priority, assigneeID, t.EstimateHours},
		})
		if err != nil {
			return res, fmt.Errorf("task %q: %w", t.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedMeetings(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "meetings"}
	for _, m := range s.fixtures.Meetings {
		projectID, err := s.reg.resolve("project", m.Project)
		if err != nil {
			return res, err
		}
		organizerID, err := s.reg.resolveOptional("user", m.Organizer)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "meetings",
			keyCols: []string{"project_id", "title"},
			keyVals: []any{projectID, m.Title},
			setCols: []string{"scheduled_at", "organizer_id", "summary"},
			setVals: []any{m.ScheduledAt, organizerID, m.Summary},
		})
		if err != nil {
			return res, fmt.Errorf("meeting %q: %w", m.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedRisks(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "risks"}
	for _, r := range s.fixtures.Risks {
		projectID, err := s.reg.resolve("project", r.Project)
		if err != nil {
			return res, err
		}
		ownerID, err := s.reg.resolveOptional("user", r.Owner)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "risks",
			keyCols: []string{"project_id", "title"},
			keyVals: []any{projectID, r.Title},
			setCols: []string{"severity", "likelihood", "mitigation", "owner_id"},
			setVals: []any{r.Severity, r.Likelihood, r.Mitigation, ownerID},
		})
		if err != nil {
			return res, fmt.Errorf("risk %q: %w", r.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedDocuments(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "documents"}
	for _, d := range s.fixtures.Documents {
		projectID, err := s.reg.resolve("project", d.Project)
		if err != nil {
			return res, err
		}
		authorID, err := s.reg.resolveOptional("user", d.Author)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "documents",
			keyCols: []string{"project_id", "title"},
			keyVals: []any{projectID, d.Title},
			setCols: []string{"kind", "author_id", "body"},
			setVals: []any{d.Kind, authorID, d.Body},
		})
		if err != nil {
			return res, fmt.Errorf("document %q: %w", d.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedAccounts(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "crm accounts"}
	for _, a := range s.fixtures.Accounts {
		tenantID, err := s.reg.resolve("tenant", a.Tenant)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "crm_accounts",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, a.Name},
			setCols: []string{"website", "segment"},
			setVals: []any{a.Website, a.Segment},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("crm account %q: %w", a.Name, err)
		}
		s.reg.register("account", a.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedCRMContacts(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "crm contacts"}
	for _, c := range s.fixtures.CRMContacts {
		accountID, err := s.reg.resolve("account", c.Account)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "crm_contacts",
			keyCols: []string{"account_id", "email"},
			keyVals: []any{accountID, c.Email},
			setCols: []string{"name", "title"},
			setVals: []any{c.Name, c.Title},
		})
		if err != nil {
			return res, fmt.Errorf("crm contact %q: %w", c.Email, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedStages(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "pipeline stages"}
	for _, st := range s.fixtures.Stages {
		tenantID, err := s.reg.resolve("tenant", st.Tenant)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "pipeline_stages",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, st.Name},
			setCols: []string{"position", "win_probability"},
			setVals: []any{st.Position, st.WinProbability},
		})
		if err != nil {
			return res, fmt.Errorf("pipeline stage %q: %w", st.Name, err)
		}
		s.reg.register("stage", st.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedOpportunities(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "opportunities"}
	for _, o := range s.fixtures.Opportunities {
		accountID, err := s.reg.resolve("account", o.Account)
		if err != nil {
			return res, err
		}
		stageID, err := s.reg.resolve("stage", o.Stage)
		if err != nil {
			return res, err
		}
		ownerID, err := s.reg.resolveOptional("user", o.Owner)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "opportunities",
			keyCols: []string{"account_id", "name"},
			keyVals: []any{accountID, o.Name},
			setCols: []string{"stage_id", "amount", "owner_id", "expected_close"},
			setVals: []any{stageID, o.Amount, ownerID, o.ExpectedClose},
		})
		if err != nil {
			return res, fmt.Errorf("opportunity %q: %w", o.Name, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedLabels(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "issue labels"}
	for _, l := range s.fixtures.Labels {
		tenantID, err := s.reg.resolve("tenant", l.Tenant)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "issue_labels",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, l.Name},
			setCols: []string{"color"},
			setVals: []any{l.Color},
		})
		if err != nil {
			return res, fmt.Errorf("issue label %q: %w", l.Name, err)
		}
		s.reg.register("label", l.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedIssues(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "issues"}
	for _, i := range s.fixtures.Issues {
		projectID, err := s.reg.resolve("project", i.Project)
		if err != nil {
			return res, err
		}
		labelID, err := s.reg.resolveOptional("label", i.Label)
		if err != nil {
			return res, err
		}
		reporterID, err := s.reg.resolveOptional("user", i.Reporter)
		if err != nil {
			return res, err
		}
		assigneeID, err := s.reg.resolveOptional("user", i.Assignee)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "issues",
			keyCols: []string{"project_id", "title"},
			keyVals: []any{projectID, i.Title},
			setCols: []string{"label_id", "status", "severity", "reporter_id", "assignee_id"},
			setVals: []any{labelID, i.Status, i.Severity, reporterID, assigneeID},
		})
		if err != nil {
			return res, fmt.Errorf("issue %q: %w", i.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedLeads(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "leads"}
	for _, l := range s.fixtures.Leads {
		tenantID, err := s.reg.resolve("tenant", l.Tenant)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "leads",
			keyCols: []string{"tenant_id", "email"},
			keyVals: []any{tenantID, l.Email},
			setCols: []string{"name", "source", "status"},
			setVals: []any{l.Name, l.Source, l.Status},
			insCols: []string{"public_id"},
			insVals: []any{uuid.New().String()},
		})
		if err != nil {
			return res, fmt.Errorf("lead %q: %w", l.Email, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedBrands(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "brand profiles"}
	for _, b := range s.fixtures.Brands {
		tenantID, err := s.reg.resolve("tenant", b.Tenant)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "brand_profiles",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, b.Name},
			setCols: []string{"voice", "audience"},
			setVals: []any{b.Voice, b.Audience},
		})
		if err != nil {
			return res, fmt.Errorf("brand profile %q: %w", b.Name, err)
		}
		s.reg.register("brand", b.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedCampaigns(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "campaigns"}
	for _, c := range s.fixtures.Campaigns {
		tenantID, err := s.reg.resolve("tenant", c.Tenant)
		if err != nil {
			return res, err
		}
		brandID, err := s.reg.resolveOptional("brand", c.Brand)
		if err != nil {
			return res, err
		}
		id, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "campaigns",
			keyCols: []string{"tenant_id", "name"},
			keyVals: []any{tenantID, c.Name},
			setCols: []string{"brand_profile_id", "channel", "status", "budget"},
			setVals: []any{brandID, c.Channel, c.Status, c.Budget},
		})
		if err != nil {
			return res, fmt.Errorf("campaign %q: %w", c.Name, err)
		}
		s.reg.register("campaign", c.Name, id)
		res.count(inserted)
	}
	return res, nil
}

func (s *Seeder) seedContent(ctx context.Context) (StepResult, error) {
	res := StepResult{Entity: "content pieces"}
	for _, c := range s.fixtures.Content {
		tenantID, err := s.reg.resolve("tenant", c.Tenant)
		if err != nil {
			return res, err
		}
		campaignID, err := s.reg.resolveOptional("campaign", c.Campaign)
		if err != nil {
			return res, err
		}
		authorID, err := s.reg.resolveOptional("user", c.Author)
		if err != nil {
			return res, err
		}
		_, inserted, err := s.store.upsert(ctx, upsertSpec{
			table:   "content_pieces",
			keyCols: []string{"tenant_id", "title"},
			keyVals: []any{tenantID, c.Title},
			setCols: []string{"campaign_id", "format", "status", "author_id"},
			setVals: []any{campaignID, c.Format, c.Status, authorID},
		})
		if err != nil {
			return res, fmt.Errorf("content piece %q: %w", c.Title, err)
		}
		res.count(inserted)
	}
	return res, nil
}

func (r *StepResult) count(inserted bool) {
	if inserted {
		r.Inserted++
	} else {
		r.Updated++
	}
}
