package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"roombook/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route. Path is the chi route pattern.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions returns the entry for the route, or a zero Permission when none is configured.
// A trailing slash on either side is ignored.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	path = normalize(path)

	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return normalize(rp.Path) == path && strings.EqualFold(rp.Method, method)
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func normalize(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}

	return path
}

var knownRoles = []string{constant.RoleUser, constant.RoleAdmin, constant.RoleSuperAdmin}

// Parse decodes a permissions file. Unknown roles and duplicate method and path pairs are rejected.
func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, errors.Wrap(err, "decode permissions")
	}

	seen := make(map[string]struct{}, len(permissions.Endpoints))

	for i, endpoint := range permissions.Endpoints {
		key := strings.ToUpper(endpoint.Method) + " " + normalize(endpoint.Path)
		if _, dup := seen[key]; dup {
			return nil, errors.Errorf("duplicate permission entry %s", key)
		}

		seen[key] = struct{}{}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(knownRoles, role) {
				return nil, errors.Errorf("endpoint %d (%s): unknown role %q", i, key, role)
			}
		}
	}

	return &permissions, nil
}

// Get loads the embedded permissions file and exits the process when it is invalid.
func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return permissions
}
