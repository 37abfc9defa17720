package corpus

// Default returns the built-in command corpus. It is used when no
// corpus file is configured and as the seed written on first run.
func Default() Corpus {
	return Corpus{
		"open_chrome": {
			"open chrome",
			"open crome",
			"launch chrome",
			"start chrome",
			"open google chrome",
		},
		"open_vscode": {
			"open vs code",
			"open vscode",
			"launch vscode",
			"start vs code",
		},
		"shutdown": {
			"shutdown",
			"shut down system",
			"turn off pc",
			"power off",
		},
		"restart": {
			"restart",
			"restart system",
			"reboot pc",
		},
		"volume_up": {
			"increase volume",
			"volume up",
			"raise volume",
		},
		"volume_down": {
			"decrease volume",
			"volume down",
			"lower volume",
		},
		"mute_volume": {
			"mute",
			"mute volume",
			"silence sound",
		},
		"screenshot": {
			"take screenshot",
			"capture screen",
			"take a screenshot",
		},
		"cpu_usage": {
			"cpu usage",
			"cpu status",
			"processor usage",
		},
		"ram_usage": {
			"ram usage",
			"memory usage",
			"ram status",
		},
		"gpu_usage": {
			"gpu usage",
			"graphics usage",
			"gpu status",
			"graphics card usage",
		},
		"battery_status": {
			"battery",
			"battery percentage",
			"battery level",
			"battery status",
		},
		"disk_space": {
			"disk space",
			"storage",
			"free space",
		},
		"network_status": {
			"network status",
			"internet status",
			"am i connected to internet",
		},
		"open_explorer": {
			"open file explorer",
			"open explorer",
			"open files",
		},
		"open_settings": {
			"open settings",
			"open system settings",
			"open windows settings",
		},
		"current_time": {
			"what time is it",
			"current time",
			"tell me the time",
		},
		"current_date": {
			"what is today's date",
			"current date",
			"tell me the date",
		},
		"exit": {
			"exit",
			"stop",
			"close jarvis",
			"quit",
		},
	}
}
