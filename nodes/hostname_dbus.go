package nodes

import (
	"context"
	"fmt"

	godbus "github.com/godbus/dbus/v5"
)

// DBusHostname reads the hostname from systemd-hostnamed.
func DBusHostname(ctx context.Context) (result string, err error) {
	conn, err := godbus.ConnectSystemBus(godbus.WithContext(ctx))
	if err != nil {
		return "", err
	}
	// Handle close error if main operation succeeded
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	obj := conn.Object("org.freedesktop.hostname1", "/org/freedesktop/hostname1")
	var variant godbus.Variant
	err = obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		"org.freedesktop.hostname1", "Hostname").Store(&variant)
	if err != nil {
		return "", err
	}
	hostname, ok := variant.Value().(string)
	if !ok {
		return "", fmt.Errorf("hostname value not a string (got %T)", variant.Value())
	}
	return hostname, nil
}
