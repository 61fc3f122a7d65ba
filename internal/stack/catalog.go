// File: internal/stack/catalog.go
// Brief: Built-in service catalog for the self-hosted backend stack.

package stack

import "time"

// Image references for the stack. Pinned so repeated runs provision the same
// software.
const (
	imageDB       = "supabase/postgres:15.1.0.117"
	imageAuth     = "supabase/gotrue:v2.99.0"
	imageREST     = "postgrest/postgrest:v11.2.0"
	imageRealtime = "supabase/realtime:v2.25.35"
	imageStorage  = "supabase/storage-api:v0.43.11"
	imageMeta     = "supabase/postgres-meta:v0.68.0"
	imageGateway  = "kong:2.8.1"
	imageStudio   = "supabase/studio:20231123-64a766a"
)

// DBSettleDelay is how long the database gets to finish its first-boot
// initialization before dependents connect. There is no health endpoint to
// poll on the stock image, so the delay is the readiness proxy.
const DBSettleDelay = 2 * time.Minute

// CatalogOptions carry the operator configuration that shapes the service
// environment templates.
type CatalogOptions struct {
	EnableEmailSignup bool
}

// Catalog returns the full service collection in declaration order. The
// declaration order doubles as the tie-break for plan ordering, so it is part
// of the catalog's contract.
func Catalog(opts CatalogOptions) []ServiceSpec {
	auth := ServiceSpec{
		Name:  "auth",
		Image: imageAuth,
		Env: []EnvVar{
			{"GOTRUE_API_HOST", "0.0.0.0"},
			{"GOTRUE_API_PORT", "9999"},
			{"API_EXTERNAL_URL", "${API_EXTERNAL_URL}"},
			{"GOTRUE_DB_DRIVER", "postgres"},
			{"GOTRUE_DB_DATABASE_URL", "postgres://supabase_auth_admin:${POSTGRES_PASSWORD}@db:5432/postgres"},
			{"GOTRUE_SITE_URL", "${SITE_URL}"},
			{"GOTRUE_JWT_SECRET", "${JWT_SECRET}"},
			{"GOTRUE_JWT_EXP", "3600"},
			{"GOTRUE_JWT_DEFAULT_GROUP_NAME", "authenticated"},
			{"GOTRUE_JWT_ADMIN_ROLES", "service_role"},
			{"GOTRUE_DISABLE_SIGNUP", "false"},
			{"GOTRUE_EXTERNAL_EMAIL_ENABLED", "${ENABLE_EMAIL_SIGNUP}"},
			{"GOTRUE_MAILER_AUTOCONFIRM", "${MAILER_AUTOCONFIRM}"},
		},
		Needs:   []string{"db"},
		Restart: "unless-stopped",
	}
	if opts.EnableEmailSignup {
		auth.Env = append(auth.Env,
			EnvVar{"GOTRUE_SMTP_HOST", "${SMTP_HOST}"},
			EnvVar{"GOTRUE_SMTP_PORT", "${SMTP_PORT}"},
			EnvVar{"GOTRUE_SMTP_USER", "${SMTP_USER}"},
			EnvVar{"GOTRUE_SMTP_PASS", "${SMTP_PASS}"},
			EnvVar{"GOTRUE_SMTP_ADMIN_EMAIL", "${SMTP_ADMIN_EMAIL}"},
			EnvVar{"GOTRUE_SMTP_SENDER_NAME", "${SMTP_SENDER_NAME}"},
		)
	}

	return []ServiceSpec{
		{
			Name:  "db",
			Image: imageDB,
			Env: []EnvVar{
				{"POSTGRES_HOST", "/var/run/postgresql"},
				{"POSTGRES_PORT", "5432"},
				{"POSTGRES_PASSWORD", "${POSTGRES_PASSWORD}"},
				{"PGPASSWORD", "${POSTGRES_PASSWORD}"},
				{"JWT_SECRET", "${JWT_SECRET}"},
				{"JWT_EXP", "3600"},
			},
			Ports: []PortBinding{{Host: 5432, Container: 5432}},
			Volumes: []VolumeBinding{
				{Source: "volumes/db/data", Target: "/var/lib/postgresql/data"},
				{Source: "volumes/db/roles.sql", Target: "/docker-entrypoint-initdb.d/init-scripts/99-roles.sql", ReadOnly: true},
				{Source: "volumes/db/jwt.sql", Target: "/docker-entrypoint-initdb.d/init-scripts/99-jwt.sql", ReadOnly: true},
			},
			Ready:   SettleFor(DBSettleDelay),
			Restart: "unless-stopped",
		},
		auth,
		{
			Name:  "rest",
			Image: imageREST,
			Env: []EnvVar{
				{"PGRST_DB_URI", "postgres://authenticator:${POSTGRES_PASSWORD}@db:5432/postgres"},
				{"PGRST_DB_SCHEMAS", "public,storage,graphql_public"},
				{"PGRST_DB_ANON_ROLE", "anon"},
				{"PGRST_JWT_SECRET", "${JWT_SECRET}"},
				{"PGRST_DB_USE_LEGACY_GUCS", "false"},
			},
			Needs:   []string{"db"},
			Restart: "unless-stopped",
		},
		{
			Name:  "realtime",
			Image: imageRealtime,
			Env: []EnvVar{
				{"PORT", "4000"},
				{"DB_HOST", "db"},
				{"DB_PORT", "5432"},
				{"DB_USER", "supabase_admin"},
				{"DB_PASSWORD", "${POSTGRES_PASSWORD}"},
				{"DB_NAME", "postgres"},
				{"DB_AFTER_CONNECT_QUERY", "SET search_path TO _realtime"},
				{"DB_ENC_KEY", "supabaserealtime"},
				{"API_JWT_SECRET", "${JWT_SECRET}"},
				{"SECRET_KEY_BASE", "${JWT_SECRET}"},
				{"ERL_AFLAGS", "-proto_dist inet_tcp"},
			},
			Needs: []string{"db"},
			// First boot needs the schema migrations applied explicitly.
			PostStart: "/app/bin/migrate",
			Restart:   "unless-stopped",
		},
		{
			Name:  "storage",
			Image: imageStorage,
			Env: []EnvVar{
				{"ANON_KEY", "${ANON_KEY}"},
				{"SERVICE_KEY", "${SERVICE_ROLE_KEY}"},
				{"POSTGREST_URL", "http://rest:3000"},
				{"PGRST_JWT_SECRET", "${JWT_SECRET}"},
				{"DATABASE_URL", "postgres://supabase_storage_admin:${POSTGRES_PASSWORD}@db:5432/postgres"},
				{"FILE_SIZE_LIMIT", "52428800"},
				{"STORAGE_BACKEND", "file"},
				{"FILE_STORAGE_BACKEND_PATH", "/var/lib/storage"},
				{"TENANT_ID", "stub"},
				{"REGION", "stub"},
			},
			Volumes: []VolumeBinding{
				{Source: "volumes/storage", Target: "/var/lib/storage"},
			},
			Needs:   []string{"db", "rest"},
			Restart: "unless-stopped",
		},
		{
			Name:  "meta",
			Image: imageMeta,
			Env: []EnvVar{
				{"PG_META_PORT", "8080"},
				{"PG_META_DB_HOST", "db"},
				{"PG_META_DB_PORT", "5432"},
				{"PG_META_DB_NAME", "postgres"},
				{"PG_META_DB_USER", "supabase_admin"},
				{"PG_META_DB_PASSWORD", "${POSTGRES_PASSWORD}"},
			},
			Needs:   []string{"db"},
			Restart: "unless-stopped",
		},
		{
			Name:  "kong",
			Image: imageGateway,
			Env: []EnvVar{
				{"KONG_DATABASE", "off"},
				{"KONG_DECLARATIVE_CONFIG", "/var/lib/kong/kong.yml"},
				{"KONG_DNS_ORDER", "LAST,A,CNAME"},
				{"KONG_PLUGINS", "request-transformer,cors,key-auth,acl"},
				{"KONG_NGINX_PROXY_PROXY_BUFFER_SIZE", "160k"},
				{"KONG_NGINX_PROXY_PROXY_BUFFERS", "64 160k"},
			},
			Ports: []PortBinding{
				{Host: 8000, Container: 8000},
				{Host: 8443, Container: 8443},
			},
			Volumes: []VolumeBinding{
				{Source: "volumes/api/kong.yml", Target: "/var/lib/kong/kong.yml", ReadOnly: true},
			},
			Needs:   []string{"auth", "rest", "realtime", "storage", "meta"},
			Restart: "unless-stopped",
		},
		{
			Name:  "studio",
			Image: imageStudio,
			Env: []EnvVar{
				{"STUDIO_PG_META_URL", "http://meta:8080"},
				{"POSTGRES_PASSWORD", "${POSTGRES_PASSWORD}"},
				{"SUPABASE_URL", "http://kong:8000"},
				{"SUPABASE_PUBLIC_URL", "${API_EXTERNAL_URL}"},
				{"SUPABASE_ANON_KEY", "${ANON_KEY}"},
				{"SUPABASE_SERVICE_KEY", "${SERVICE_ROLE_KEY}"},
			},
			Ports:   []PortBinding{{Host: 3000, Container: 3000}},
			Needs:   []string{"kong", "meta"},
			Restart: "unless-stopped",
		},
	}
}
