package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"
)

// scanWiFiAccessPoints lists nearby WiFi access points using nmcli.
func scanWiFiAccessPoints(ctx context.Context) ([]maps.WiFiAccessPoint, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, fmt.Errorf("nmcli not found: %w", err)
	}

	output, err := exec.CommandContext(ctx, "nmcli", "-t", "-f", "BSSID,SIGNAL", "dev", "wifi", "list").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run nmcli: %w", err)
	}

	var wifiAPs []maps.WiFiAccessPoint
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		// nmcli escapes the colons inside the BSSID, so the last field is
		// the signal and everything before it is the MAC.
		line := scanner.Text()
		sep := strings.LastIndex(line, ":")
		if sep < 0 {
			continue
		}
		mac := strings.ReplaceAll(strings.TrimSpace(line[:sep]), `\:`, ":")
		if !isValidMAC(mac) {
			continue
		}
		signal, err := strconv.Atoi(strings.TrimSpace(line[sep+1:]))
		if err != nil {
			continue
		}
		wifiAPs = append(wifiAPs, maps.WiFiAccessPoint{
			MACAddress:     mac,
			SignalStrength: float64(signal),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan nmcli output: %w", err)
	}

	return wifiAPs, nil
}

// scanCellTowers reads the serving cell of the given modem using mmcli.
func scanCellTowers(ctx context.Context, modemIndex int) ([]maps.CellTower, error) {
	if _, err := exec.LookPath("mmcli"); err != nil {
		return nil, fmt.Errorf("mmcli not found: %w", err)
	}

	output, err := exec.CommandContext(ctx, "mmcli", "-m", strconv.Itoa(modemIndex), "--output-keyvalue").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run mmcli for modem %d: %w", modemIndex, err)
	}

	var tower maps.CellTower
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "modem.3gpp.mcc":
			if mcc, err := strconv.Atoi(value); err == nil {
				tower.MobileCountryCode = mcc
			}
		case "modem.3gpp.mnc":
			if mnc, err := strconv.Atoi(value); err == nil {
				tower.MobileNetworkCode = mnc
			}
		case "modem.3gpp.lac":
			if lac, err := strconv.ParseInt(value, 16, 32); err == nil {
				tower.LocationAreaCode = int(lac)
			}
		case "modem.3gpp.cid":
			if cid, err := strconv.ParseInt(value, 16, 32); err == nil {
				tower.CellID = int(cid)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan mmcli output: %w", err)
	}

	if tower.MobileCountryCode == 0 || tower.MobileNetworkCode == 0 {
		return nil, errors.New("incomplete cell tower data")
	}

	return []maps.CellTower{tower}, nil
}

// isValidMAC checks the "00:14:22:01:23:45" form.
func isValidMAC(mac string) bool {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return false
	}
	for _, part := range parts {
		if len(part) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(part, 16, 8); err != nil {
			return false
		}
	}
	return true
}
