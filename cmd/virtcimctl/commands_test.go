package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomainXML = `<domain type='kvm'>
  <name>vm1</name>
  <devices>
    <disk type='file' device='disk'>
      <driver name='qemu' type='qcow2'/>
      <source file='/var/lib/libvirt/images/vm1.qcow2'/>
      <target dev='vda' bus='virtio'/>
    </disk>
    <interface type='bridge'>
      <mac address='52:54:00:12:34:56'/>
      <source bridge='br0'/>
    </interface>
  </devices>
</domain>`

const testFilterXML = `<filter name='allow-ssh' chain='root'>
  <rule action='accept' direction='in' priority='500'>
    <tcp dstportstart='22'/>
  </rule>
  <filterref filter='clean-traffic'/>
</filter>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDevicesCmd(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "vm1.xml", testDomainXML)

	testcases := []struct {
		name    string
		args    []string
		wantIDs []string
		wantErr bool
	}{
		{name: "disks", args: []string{"devices", "--kind", "disk", path}, wantIDs: []string{"vda"}},
		{name: "nets", args: []string{"devices", "-k", "net", path}, wantIDs: []string{"52:54:00:12:34:56"}},
		{name: "unknown kind", args: []string{"devices", "--kind", "usb", path}, wantErr: true},
		{name: "missing file", args: []string{"devices", filepath.Join(t.TempDir(), "nope.xml")}, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, "", tc.args...)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var views []struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &views))
			ids := make([]string, 0, len(views))
			for _, v := range views {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestFilterCmd_Stdin(t *testing.T) {
	t.Parallel()

	out, err := execute(t, testFilterXML, "filter", "-")
	require.NoError(t, err)

	var f struct {
		Name  string   `json:"name"`
		Refs  []string `json:"refs"`
		Rules []struct {
			ProtocolID string `json:"protocol_id"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, "allow-ssh", f.Name)
	assert.Equal(t, []string{"clean-traffic"}, f.Refs)
	require.Len(t, f.Rules, 1)
	assert.Equal(t, "tcp", f.Rules[0].ProtocolID)
}

func TestPoolCmd_UnknownKind(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.xml", `<pool type='dir'><name>default</name></pool>`)
	_, err := execute(t, "", "pool", "--kind", "tape", path)
	require.Error(t, err)
}

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "10-ok")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	out, err := execute(t, "", "check", "--dir", dir, "vm1", "qemu:///system")
	require.NoError(t, err)
	assert.Contains(t, out, "All migration checks passed")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "20-fail"), []byte("#!/bin/sh\nexit 1\n"), 0o755))
	_, err = execute(t, "", "check", "--dir", dir, "vm1", "qemu:///system")
	require.Error(t, err)
}
