package monitor

import (
	"encoding/json"
	"fmt"

	"pipewatch/internal/graph"
	"pipewatch/internal/interp"
	"pipewatch/internal/wildcard"
)

// HubCycle is returned when a hub manifest, directly or through nested
// groups, would re-register a hub path that is already an ancestor of
// hubID in the current parse — a cycle the persisted graph can never
// resolve on its own.
type HubCycle struct {
	Path string
}

func (e *HubCycle) Error() string { return fmt.Sprintf("hub cycle detected at %q", e.Path) }

// processHubGroup is the pure reducer over one parsed hub JSON document,
// grounded on the coordinator's process_hub_group: it recognizes vars,
// groups, hubs, and pipes keys and ignores everything else. ancestors
// holds every hub path already open in this parse, the cycle guard for
// the "hubs" case.
func (m *Monitor) processHubGroup(hubID graph.ID, vars graph.Variables, node any, ancestors map[string]bool) error {
	obj, ok := node.(map[string]any)
	if !ok {
		return fmt.Errorf("hub node is not an object")
	}

	local := vars.Clone()

	if rawVars, ok := obj["vars"]; ok {
		defs, ok := rawVars.([]any)
		if !ok {
			return fmt.Errorf("vars is not an array")
		}
		if err := interp.Adapt(local, defs); err != nil {
			return err
		}
	}

	if rawGroups, ok := obj["groups"]; ok {
		groups, ok := rawGroups.([]any)
		if !ok {
			return fmt.Errorf("groups is not an array")
		}
		for _, g := range groups {
			if err := m.processHubGroup(hubID, local, g, ancestors); err != nil {
				return err
			}
		}
	}

	if rawHubs, ok := obj["hubs"]; ok {
		if err := m.processHubSpecs(hubID, local, rawHubs, ancestors); err != nil {
			return err
		}
	}

	if rawPipes, ok := obj["pipes"]; ok {
		if err := m.processPipeSpecs(hubID, local, rawPipes); err != nil {
			return err
		}
	}

	return nil
}

func (m *Monitor) processHubSpecs(parentID graph.ID, vars graph.Variables, raw any, ancestors map[string]bool) error {
	specs, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("hubs is not an array")
	}
	for _, rawSpec := range specs {
		spec, ok := rawSpec.(map[string]any)
		if !ok {
			return fmt.Errorf("hub spec is not an object")
		}

		local := vars.Clone()
		if rawVars, ok := spec["vars"]; ok {
			defs, ok := rawVars.([]any)
			if !ok {
				return fmt.Errorf("hub spec vars is not an array")
			}
			if err := interp.Adapt(local, defs); err != nil {
				return err
			}
		}

		relPath, _ := spec["path"].(string)
		candidate := local["cur-dir"] + string(dirSep) + relPath
		resolved, err := interp.Process(candidate, local)
		if err != nil {
			return err
		}
		if wildcard.ContainsWildcard(resolved) {
			return fmt.Errorf("wildcards in hub paths unsupported: %q", resolved)
		}

		canonical, err := m.probe.Canonical(resolved)
		if err != nil {
			return err
		}
		if ancestors[canonical] {
			return &HubCycle{Path: canonical}
		}

		local["cur-dir"] = parentDir(canonical)

		id, created := m.store.FindOrAddHub(canonical, parentID, local)
		if created {
			m.store.DirtyHubs.Add(id)
		}
	}
	return nil
}

func (m *Monitor) processPipeSpecs(parentID graph.ID, vars graph.Variables, raw any) error {
	specs, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("pipes is not an array")
	}
	for _, rawSpec := range specs {
		spec, ok := rawSpec.(map[string]any)
		if !ok {
			return fmt.Errorf("pipe spec is not an object")
		}

		tool, _ := spec["tool"].(string)
		local := vars.Clone()
		if rawVars, ok := spec["vars"]; ok {
			defs, ok := rawVars.([]any)
			if !ok {
				return fmt.Errorf("pipe spec vars is not an array")
			}
			if err := interp.Adapt(local, defs); err != nil {
				return err
			}
		}

		settingsRaw := spec["settings"]

		rawPaths, ok := spec["paths"]
		if !ok {
			continue
		}
		pathSpecs, ok := rawPaths.([]any)
		if !ok {
			return fmt.Errorf("pipe paths is not an array")
		}

		for _, rawPair := range pathSpecs {
			pair, ok := rawPair.(map[string]any)
			if !ok {
				return fmt.Errorf("pipe path pair is not an object")
			}
			inRaw, _ := pair["in"].(string)
			outRaw, _ := pair["out"].(string)

			in, err := interp.Process(inRaw, local)
			if err != nil {
				return err
			}

			if wildcard.ContainsWildcard(in) {
				settingsBytes, err := json.Marshal(settingsRaw)
				if err != nil {
					return err
				}
				wildcardID := m.store.FindOrAddMonitoredWildcard(in)
				id, created := m.store.FindOrAddPipeWildcard(parentID, wildcardID, tool, in, outRaw, local, settingsBytes)
				if created {
					m.store.DirtyPipeWildcards.Add(id)
				}
				continue
			}

			out, err := interp.Process(outRaw, local)
			if err != nil {
				return err
			}
			processedSettings, err := interp.ProcessJSON(settingsRaw, local)
			if err != nil {
				return err
			}
			settingsBytes, err := json.Marshal(processedSettings)
			if err != nil {
				return err
			}

			inCanon, err := m.probe.Canonical(in)
			if err != nil {
				return err
			}
			outCanon, err := m.probe.Canonical(out)
			if err != nil {
				return err
			}

			id, created := m.store.FindOrAddPipe(parentID, graph.NoID, tool, inCanon, outCanon, settingsBytes)
			if created {
				m.store.DirtyPipes.Add(id)
			}
		}
	}
	return nil
}

const dirSep = '/'
