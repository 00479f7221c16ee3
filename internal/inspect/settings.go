package inspect

import "context"

// SettingNames returns the names of every setting the server exposes,
// fetching them on first use and memoizing the list. Only a successful
// fetch is cached; after a failure the next call asks the server again.
func (in *Introspector) SettingNames(ctx context.Context) ([]string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.settingsOK {
		return in.settingNames, nil
	}

	names, err := in.cat.ListSettingNames(ctx)
	if err != nil {
		return nil, err
	}

	in.settingNames = names
	in.settingsOK = true
	return names, nil
}
