package xmlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/pool"
)

func wrapDevices(doc string) string {
	return "<domain><devices>" + doc + "</devices></domain>"
}

func TestDisk(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		disk *device.Disk
	}{
		{
			name: "file disk",
			disk: &device.Disk{Type: "file", Device: "disk", Driver: "qemu", Source: "/var/lib/libvirt/images/a.qcow2", VirtualDev: "vdb", DiskType: device.DiskTypeFile},
		},
		{
			name: "block disk",
			disk: &device.Disk{Type: "block", Device: "disk", Source: "/dev/sdb", VirtualDev: "vdc", DiskType: device.DiskTypePhy, Shareable: true},
		},
		{
			name: "readonly cdrom",
			disk: &device.Disk{Type: "file", Device: "cdrom", Source: "/iso/a.iso", VirtualDev: "hdc", DiskType: device.DiskTypeFile, ReadOnly: true},
		},
		{
			name: "filesystem",
			disk: &device.Disk{Type: "mount", Device: "filesystem", Source: "/srv/share", VirtualDev: "/mnt/share", DiskType: device.DiskTypeFS},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := Disk(tc.disk)
			require.NoError(t, err)

			disks := device.Disks(wrapDevices(out))
			require.Len(t, disks, 1, out)
			got := disks[0]
			assert.Equal(t, tc.disk.Source, got.Source)
			assert.Equal(t, tc.disk.VirtualDev, got.VirtualDev)
			assert.Equal(t, tc.disk.DiskType, got.DiskType)
			assert.Equal(t, tc.disk.ReadOnly, got.ReadOnly)
			assert.Equal(t, tc.disk.Shareable, got.Shareable)
			assert.Equal(t, tc.disk.Driver, got.Driver)
		})
	}
}

func TestNet(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name       string
		net        *device.Net
		wantType   string
		wantSource string
	}{
		{
			name:       "bridge",
			net:        &device.Net{Type: "bridge", MAC: "52:54:00:12:34:56", Source: "br0", Model: "virtio"},
			wantType:   "bridge",
			wantSource: "br0",
		},
		{
			name:       "network",
			net:        &device.Net{Type: "network", MAC: "52:54:00:12:34:57", Source: "default"},
			wantType:   "network",
			wantSource: "default",
		},
		{
			name:       "bridge without source",
			net:        &device.Net{Type: "bridge", MAC: "52:54:00:12:34:58"},
			wantType:   "bridge",
			wantSource: device.DefaultBridge,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := Net(tc.net)
			require.NoError(t, err)

			nets := device.Nets(wrapDevices(out))
			require.Len(t, nets, 1, out)
			assert.Equal(t, tc.wantType, nets[0].Type)
			assert.Equal(t, tc.net.MAC, nets[0].MAC)
			assert.Equal(t, tc.wantSource, nets[0].Source)
			assert.Equal(t, tc.net.Model, nets[0].Model)
		})
	}
}

func TestDevice_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := Device(&device.Mem{Size: 1024, MaxSize: 2048})
	assert.ErrorIs(t, err, ErrUnsupportedDevice)

	_, err = Device(nil)
	assert.ErrorIs(t, err, ErrUnsupportedDevice)

	out, err := Device(&device.Net{Type: "bridge", MAC: "aa:bb:cc:dd:ee:ff", Source: "br1"})
	require.NoError(t, err)
	assert.Contains(t, out, "aa:bb:cc:dd:ee:ff")
}

func TestStoragePool(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		pool *pool.DiskPool
	}{
		{
			name: "dir",
			pool: &pool.DiskPool{Name: "images", PoolType: pool.PoolTypeDir, Path: "/var/lib/libvirt/images"},
		},
		{
			name: "netfs",
			pool: &pool.DiskPool{Name: "nfs", PoolType: pool.PoolTypeNetFS, Path: "/mnt/nfs", Host: "nfs.local", SourceDir: "/export"},
		},
		{
			name: "logical",
			pool: &pool.DiskPool{Name: "vg0", PoolType: pool.PoolTypeLogical, Path: "/dev/vg0", DevicePaths: []string{"/dev/sdb", "/dev/sdc"}},
		},
		{
			name: "scsi",
			pool: &pool.DiskPool{Name: "fc", PoolType: pool.PoolTypeSCSI, Path: "/dev/disk/by-path", Adapter: "host5", PortName: "10000000c9831b4b", NodeName: "20000000c9831b4b"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := StoragePool(tc.pool)
			require.NoError(t, err)

			parsed, err := pool.Parse(out, pool.KindDisk)
			require.NoError(t, err, out)
			assert.Equal(t, tc.pool, parsed)
		})
	}

	_, err := StoragePool(&pool.DiskPool{PoolType: pool.PoolTypeDir})
	assert.ErrorIs(t, err, pool.ErrMissingName)
}

func TestStorageVolume(t *testing.T) {
	t.Parallel()

	out, err := StorageVolume(&VolumeSpec{Name: "disk1.qcow2", Format: "qcow2", Capacity: 10})
	require.NoError(t, err)
	assert.Contains(t, out, "<name>disk1.qcow2</name>")
	assert.Contains(t, out, `<capacity unit="G">10</capacity>`)
	assert.Contains(t, out, `type="qcow2"`)

	out, err = StorageVolume(&VolumeSpec{Name: "disk2.img", Capacity: 512, Unit: "M"})
	require.NoError(t, err)
	assert.Contains(t, out, `<capacity unit="M">512</capacity>`)
	assert.Contains(t, out, `type="raw"`)

	_, err = StorageVolume(&VolumeSpec{Name: "x", Format: "vmdk"})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	_, err = StorageVolume(&VolumeSpec{Format: "raw"})
	assert.ErrorIs(t, err, ErrInvalidVolume)
}
